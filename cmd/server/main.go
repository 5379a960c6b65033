package main

import (
	"github.com/wfiftyfour/graphrag/internal/server"
	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
