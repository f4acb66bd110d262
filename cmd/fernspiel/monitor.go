package main

import (
	"github.com/aretw0/fernspiel/internal/cli"
	"github.com/aretw0/fernspiel/internal/config"
	redisAdapter "github.com/aretw0/fernspiel/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow the state events installations publish to Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("redis") {
			cfg.RedisAddr, _ = cmd.Flags().GetString("redis")
		}
		if cmd.Flags().Changed("redis-channel") {
			cfg.RedisChannel, _ = cmd.Flags().GetString("redis-channel")
		}
		if cfg.RedisAddr == "" {
			cfg.RedisAddr = "localhost:6379"
		}

		pub := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisAdapter.WithChannel(cfg.RedisChannel))
		defer pub.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Monitor(ctx, pub, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().String("redis", "", "Redis address (defaults to FERNSPIEL_REDIS_ADDR or localhost:6379)")
	monitorCmd.Flags().String("redis-channel", "", "Redis channel for state events")
}
