package config

func NewAuthForTest(jwtSecret, issuer string, noAuthn bool, noAuthnAs string) *Auth {
	return &Auth{
		jwtSecret: jwtSecret,
		issuer:    issuer,
		noAuthn:   noAuthn,
		noAuthnAs: noAuthnAs,
	}
}

func NewRepositoryForTest(backend, dsn string) *Repository {
	return &Repository{backend: backend, dsn: dsn}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}
