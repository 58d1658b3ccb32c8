package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ibreez3/email-rewriter/diffview"
	"github.com/ibreez3/email-rewriter/service"
)

var (
	emailFile string
	tone      string
	model     string
	showDiff  bool
	verbose   bool
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Rewrite an email read from --file or stdin",
	RunE:  runEmail,
}

func init() {
	emailCmd.Flags().StringVarP(&emailFile, "file", "f", "", "File holding the email (default stdin)")
	emailCmd.Flags().StringVarP(&tone, "tone", "t", "Professional", "Professional, Friendly, Persuasive or Apologetic")
	emailCmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default first configured model)")
	emailCmd.Flags().BoolVar(&showDiff, "diff", false, "Print line changes instead of the rewritten email")
	emailCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log attempts and retries")
	rootCmd.AddCommand(emailCmd)
}

func runEmail(cmd *cobra.Command, _ []string) error {
	svc, log, err := newService(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var src io.Reader = cmd.InOrStdin()
	if emailFile != "" {
		f, err := os.Open(emailFile)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read email: %w", err)
	}
	if model == "" && len(svc.Config().Models) > 0 {
		model = svc.Config().Models[0]
	}

	out := svc.Rewrite(cmd.Context(), service.Input{
		Email:    string(b),
		Tone:     tone,
		Model:    model,
		APIKey:   apiKey,
		ShowDiff: showDiff,
	})
	if out.Status != service.StatusSuccess {
		return fmt.Errorf("%s", out.Error)
	}
	w := cmd.OutOrStdout()
	if !showDiff {
		fmt.Fprintln(w, out.Rewritten)
		return nil
	}
	for _, l := range out.Diff {
		switch l.Op {
		case diffview.OpAdd:
			fmt.Fprintln(w, "+ "+l.Text)
		case diffview.OpRemove:
			fmt.Fprintln(w, "- "+l.Text)
		default:
			fmt.Fprintln(w, "  "+l.Text)
		}
	}
	return nil
}
