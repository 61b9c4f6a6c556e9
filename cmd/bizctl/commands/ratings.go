package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/bizdir-backend/internal/app"
	"github.com/javajoker/bizdir-backend/internal/database"
	"github.com/javajoker/bizdir-backend/internal/repository"
)

// recomputeRatingsCmd rebuilds the stored rating aggregates
var recomputeRatingsCmd = &cobra.Command{
	Use:   "recompute-ratings",
	Short: "Rebuild every business rating from its reviews",
	Long: `Recompute average_rating and total_reviews for every business.

Review writes keep these columns current; this repairs rows changed
outside the API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.Connect(cfg, false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		n, err := repository.NewStore(db).Reviews.RecomputeAll(cmd.Context())
		if err != nil {
			return err
		}

		logrus.WithField("businesses", n).Info("Ratings recomputed")
		return nil
	},
}
