package main

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

func (cli *commandLine) migrate(args []string) error {
	command := args[0]
	switch command {
	case "up-to", "down-to":
		if len(args) < 2 {
			return fmt.Errorf("%s requires a VERSION argument", command)
		}
		if _, err := strconv.ParseInt(args[1], 10, 64); err != nil {
			return fmt.Errorf("version must be a number (got '%s')", args[1])
		}
	case "up", "up-by-one", "down", "redo", "reset", "status", "version":
	default:
		return fmt.Errorf("%q: no such migrate command", command)
	}
	if err := runMigrationsFunc(command, cli.db, args[1:]...); err != nil {
		return err
	}
	cli.logger.Info("migration command finished", zap.String("command", command))
	return nil
}
