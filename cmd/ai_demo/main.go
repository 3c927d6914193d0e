// README: Manual check of the configured LLM; renders one caddie prompt and prints the reply.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"caddy/internal/ai"
	"caddy/internal/config"
	"caddy/internal/infra"
)

var (
	pin      string
	meters   float64
	club     string
	question string
)

var rootCmd = &cobra.Command{
	Use:          "ai_demo",
	Short:        "Send one caddie prompt to the configured LLM",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&pin, "pin", "Pebble Beach #7", "name of the closest pin")
	f.Float64Var(&meters, "meters", 95, "distance to the pin in meters")
	f.StringVar(&club, "club", "PW", "suggested club")
	f.StringVarP(&question, "question", "q", "The wind is into my face, what should I hit?", "golfer question")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.Logging, "ai-demo")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		logger.Error().Err(err).Str("provider", cfg.AI.Provider).Msg("failed to initialize ai provider")
		return err
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}

	prompt := ai.CaddiePrompt(ai.ClosestPin{
		Name:           pin,
		Category:       "pin",
		DistanceMeters: meters,
		Club:           club,
	}, question)
	fmt.Printf("Prompt:\n%s\n\n", prompt)

	reply, err := provider.Complete(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("completion failed")
		return err
	}
	fmt.Printf("%s: %s\n", provider.Name(), reply)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
