package http

var ParseDate = parseDate
