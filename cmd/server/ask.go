package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Ayash-Bera/miniplex/internal/config"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	askURLs []string

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	answerStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	citationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Search and answer one question in the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&askURLs, "url", nil, "Extra page to include as context (repeatable)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := utils.GetLogger()
	logger.SetOutput(io.Discard)
	if verbose {
		logger.SetOutput(cmd.ErrOrStderr())
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	a := newApp(ctx, cfg, logger)
	defer a.close()

	query := strings.Join(args, " ")
	sessionID := utils.NewSessionID()

	results := a.service.Search(ctx, sessionID, query, askURLs)
	resp, err := a.service.Answer(ctx, sessionID, query, results)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), renderAnswer(query, resp))
	return nil
}

func renderAnswer(query string, resp *models.AnswerResponse) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(query) + "\n\n")
	b.WriteString(answerStyle.Render(strings.TrimSpace(resp.Answer)) + "\n")

	if len(resp.Citations) > 0 {
		b.WriteString("\n" + headerStyle.Render("Sources") + "\n")
		sources := make(map[string]models.Source, len(resp.SearchResults))
		for _, r := range resp.SearchResults {
			if _, ok := sources[r.URL]; !ok {
				sources[r.URL] = r.Source
			}
		}
		for i, url := range resp.Citations {
			line := citationStyle.Render(fmt.Sprintf("[%d] %s", i+1, url))
			if src, ok := sources[url]; ok {
				line += " " + sourceStyle.Render(string(src))
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}
