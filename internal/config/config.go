package config

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Pool Store

type Configuration struct {
	Server    Server `debugmap:"visible"`
	Pool      Pool   `debugmap:"visible"`
	Store     Store  `debugmap:"visible"`
	LogFormat string `debugmap:"visible" default:"console"`
	LogLevel  string `debugmap:"visible" default:"info"`
}

type Server struct {
	ServerMode string `debugmap:"visible" default:"dev"`
	HTTPPort   int    `debugmap:"visible" default:"8000"`
}

type Pool struct {
	Size          int  `debugmap:"visible" default:"2"`
	MaxQueueSize  int  `debugmap:"visible" default:"0"`
	SpawnAttempts uint `debugmap:"visible" default:"1"`
}

type Store struct {
	DataFolder string `debugmap:"visible" default:""`
}
