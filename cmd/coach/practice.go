package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/session"
)

var (
	practiceJobTitle string
	practiceCompany  string
	practiceDuration int
	practiceVoice    bool
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	RunE:  runPractice,
}

func init() {
	practiceCmd.Flags().StringVar(&practiceJobTitle, "job-title", "", "Role being interviewed for")
	practiceCmd.Flags().StringVar(&practiceCompany, "company", "", "Company name")
	practiceCmd.Flags().IntVar(&practiceDuration, "duration", interview.DefaultDuration, "Interview length in minutes")
	practiceCmd.Flags().BoolVar(&practiceVoice, "voice", false, "Include vocal delivery feedback")
	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	kind, err := selectOption("Interview type", []string{
		string(interview.KindMixed), string(interview.KindTechnical), string(interview.KindBehavioral),
	})
	if err != nil {
		return err
	}
	level, err := selectOption("Experience level", []string{
		string(interview.LevelMid), string(interview.LevelEntry), string(interview.LevelJunior),
		string(interview.LevelSenior), string(interview.LevelPrincipal),
	})
	if err != nil {
		return err
	}

	gw, err := newGateway(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = gw.Close() }()

	ctx := cmd.Context()
	printer := observability.NewPrinter(cmd.OutOrStdout())
	engine := interview.NewEngine(gw, nil, logger)
	registry := session.NewRegistry(nil, logger)

	st, err := registry.Create(ctx, interview.Config{
		UserID:          "cli",
		JobTitle:        practiceJobTitle,
		Company:         practiceCompany,
		Kind:            interview.Kind(kind),
		Level:           interview.Level(level),
		DurationMinutes: practiceDuration,
		VoiceAnalysis:   practiceVoice,
	})
	if err != nil {
		return err
	}

	advance := func(step func(*interview.State) (interview.Turn, error)) (interview.Turn, error) {
		var turn interview.Turn
		_, err := registry.Update(ctx, st.ID, func(s *interview.State) error {
			var err error
			turn, err = step(s)
			return err
		})
		return turn, err
	}

	turn, err := advance(func(s *interview.State) (interview.Turn, error) { return engine.Start(ctx, s) })
	if err != nil {
		return err
	}
	printer.PrintTurn(turn)

	answer := promptui.Prompt{Label: "Your answer (empty line to stop)"}
	for !turn.Ended {
		text, err := answer.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || (err == nil && strings.TrimSpace(text) == "") {
			turn, err = advance(func(s *interview.State) (interview.Turn, error) { return engine.End(ctx, s) })
			if err != nil {
				return err
			}
			printer.PrintTurn(turn)
			break
		}
		if err != nil {
			return err
		}

		turn, err = advance(func(s *interview.State) (interview.Turn, error) { return engine.Respond(ctx, s, text) })
		if err != nil {
			return err
		}
		printer.PrintTurn(turn)
	}
	return registry.Remove(ctx, st.ID)
}

func selectOption(label string, items []string) (string, error) {
	prompt := promptui.Select{Label: label, Items: items}
	_, choice, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return choice, nil
}
