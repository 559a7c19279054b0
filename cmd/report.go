package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"study-tracker/internal/app"
	"study-tracker/internal/database"
	"study-tracker/internal/models"
	"study-tracker/internal/study"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	reportUser string
	reportDate string
)

var (
	// Styles
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	periodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	sessionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	leaveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print one day's study sessions and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportUser == "" {
			return errors.New("--user is required")
		}
		cfg, log, closer, err := loadRuntime()
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := database.Init(cfg.Database)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer database.Close(db)

		c, err := app.BuildContainer(cfg, db, log)
		if err != nil {
			return err
		}

		var user models.User
		if err := db.Where("LOWER(username) = LOWER(?)", reportUser).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %q not found", reportUser)
			}
			return err
		}

		date := reportDate
		if date == "" {
			date = study.DateKey(c.Clock.Now())
		}
		day, err := study.ParseDateKey(date)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var rec study.DayRecord
		err = c.Registry.Do(user.ID, func(t *study.Tracker) error {
			var err error
			rec, err = t.Aggregator().Day(ctx, date)
			return err
		})
		if err != nil {
			return err
		}
		leave, err := c.Store.GetLeave(ctx, user.ID, date)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderReport(day, rec, leave))
		return nil
	},
}

// renderReport formats one day for the terminal.
func renderReport(day time.Time, rec study.DayRecord, leave *study.LeaveDay) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(study.FormatDateChinese(day)))
	b.WriteString("\n")

	if leave != nil {
		note := "请假"
		if leave.Reason != nil {
			note += "：" + *leave.Reason
		}
		b.WriteString(leaveStyle.Render(note))
		b.WriteString("\n")
	}

	totals := rec.Totals()
	for _, p := range study.Periods {
		b.WriteString(periodStyle.Render(fmt.Sprintf("%s  %s", p.Label(), study.FormatChinese(totals.Period(p)))))
		b.WriteString("\n")
		sessions := rec.Sessions(p)
		if len(sessions) == 0 {
			b.WriteString(sessionStyle.Render("  （无记录）"))
			b.WriteString("\n")
			continue
		}
		for _, s := range sessions {
			line := fmt.Sprintf("  %s - %s  %s",
				s.Start.Format("15:04:05"), s.End.Format("15:04:05"), study.FormatClock(s.Duration))
			b.WriteString(sessionStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(totalStyle.Render("合计 " + study.FormatChinese(totals.Day)))
	return b.String()
}

func init() {
	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "username to report on")
	reportCmd.Flags().StringVarP(&reportDate, "date", "d", "", "date as YYYY-MM-DD (default today)")
	rootCmd.AddCommand(reportCmd)
}
