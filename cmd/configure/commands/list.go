package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kashishkhatter/interviewer-cw/internal/config"
	"github.com/kashishkhatter/interviewer-cw/internal/database"
	"github.com/kashishkhatter/interviewer-cw/internal/identity"
)

// NewListCmd creates the list command for stored interview data.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored interview data",
	}
	cmd.AddCommand(newListInterviewsCmd())
	cmd.AddCommand(newListAnswersCmd())
	return cmd
}

func newListInterviewsCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "interviews",
		Short: "List interviews owned by an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := database.NewInterviewRepository(db)
			interviews, err := repo.ListByOwner(context.Background(), identity.Normalize(email), "")
			if err != nil {
				return fmt.Errorf("list interviews: %w", err)
			}
			if len(interviews) == 0 {
				fmt.Println("No interviews found.")
				return nil
			}
			for _, iv := range interviews {
				fmt.Printf("%s  %-30s  %s\n", iv.CreatedAt.Format("2006-01-02"), iv.JobPosition, iv.MockID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Owner email (required)")
	return cmd
}

func newListAnswersCmd() *cobra.Command {
	var mockID string
	cmd := &cobra.Command{
		Use:   "answers",
		Short: "List recorded answers for an interview",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mockID == "" {
				return fmt.Errorf("--mock-id is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := database.NewAnswerRepository(db)
			answers, err := repo.ListByMockID(context.Background(), mockID)
			if err != nil {
				return fmt.Errorf("list answers: %w", err)
			}
			if len(answers) == 0 {
				fmt.Println("No answers recorded.")
				return nil
			}
			for _, a := range answers {
				fmt.Printf("#%d  [%s]  rating=%-4s  %s\n", a.ID, a.FeedbackStatus, a.Rating, a.Question)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mockID, "mock-id", "", "Interview mock ID (required)")
	return cmd
}
