package main

import (
	"fmt"
	"time"

	"github.com/iwvelando/vehicle-afford/internal/affordability"
	"github.com/iwvelando/vehicle-afford/internal/backtest"
	"github.com/iwvelando/vehicle-afford/internal/cost"
	"github.com/iwvelando/vehicle-afford/internal/forecast"
	"github.com/iwvelando/vehicle-afford/internal/netpay"
	"github.com/iwvelando/vehicle-afford/internal/optimizer"
	"github.com/iwvelando/vehicle-afford/internal/recommend"
	"github.com/spf13/cobra"
)

func (a *app) newNetPayCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "netpay",
		Short: "Estimate net annual and monthly pay after taxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(cmd, input)
			if err != nil {
				return err
			}
			fin := req.Profile
			result := netpay.NewEstimator(a.logger, a.tables).Estimate(fin.Salary, fin.EmploymentSubsidies, fin.TransportationSubsidy)
			return a.write("Net Pay Estimate", result)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (YAML or JSON, - for stdin)")
	return cmd
}

func (a *app) newCostCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Calculate the monthly cost of owning the preferred vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(cmd, input)
			if err != nil {
				return err
			}
			result := cost.NewCalculator(a.logger, a.tables).Calculate(req.Profile, req.Preferences, req.Scenario)
			return a.write("Monthly Cost", result)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (YAML or JSON, - for stdin)")
	return cmd
}

func (a *app) newScoreCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score how affordable the preferred vehicle is",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(cmd, input)
			if err != nil {
				return err
			}
			monthly := cost.NewCalculator(a.logger, a.tables).
				Calculate(req.Profile, req.Preferences, req.Scenario).CostBreakdown.Total
			result := affordability.NewScorer(a.logger, a.tables).Score(req.Profile, req.Preferences, &monthly)
			return a.write("Affordability Index", result)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (YAML or JSON, - for stdin)")
	return cmd
}

func (a *app) newForecastCmd() *cobra.Command {
	var input string
	var years int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the resale value of the preferred vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("years") {
				years = a.cfg.Forecast.Years
			}
			if years < 0 || years > 30 {
				return fmt.Errorf("years must be between 0 and 30, got %d", years)
			}

			req, err := readRequest(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			result := forecast.NewForecaster(a.logger, a.tables).Forecast(req.Preferences, req.Scenario, years)
			return a.write(fmt.Sprintf("Value Forecast (%d years)", years), result)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (YAML or JSON, - for stdin)")
	cmd.Flags().IntVarP(&years, "years", "y", 0, "years ahead to forecast (defaults to forecast.years)")
	return cmd
}

func (a *app) newRecommendCmd() *cobra.Command {
	var input string
	var limit int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the trims that fit the buyer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(cmd, input)
			if err != nil {
				return err
			}
			result := recommend.NewRanker(a.logger, a.tables).Recommend(req.Profile, req.Preferences, req.Scenario)
			if limit > 0 && len(result.Recommendations) > limit {
				result.Recommendations = result.Recommendations[:limit]
			}
			return a.write("Recommendations", result)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (YAML or JSON, - for stdin)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many recommendations")
	return cmd
}

func (a *app) newBacktestCmd() *cobra.Command {
	var models []string
	var price float64
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest the depreciation model against synthetic cohorts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if price < 0 {
				return fmt.Errorf("price must not be negative, got %v", price)
			}
			result, err := backtest.NewBacktester(a.logger, a.tables).Batch(models, price, time.Now())
			if err != nil {
				return err
			}
			return a.write("Backtest", result)
		},
	}
	cmd.Flags().StringSliceVar(&models, "models", nil, "models to backtest (defaults to the whole catalog)")
	cmd.Flags().Float64Var(&price, "price", 0, "purchase price of each cohort (defaults to 30000)")
	return cmd
}

func (a *app) newMaxPriceCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "max-price",
		Short: "Find the highest price whose monthly cost fits the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(cmd, input)
			if err != nil {
				return err
			}
			summary, err := optimizer.NewRunner(a.logger, a.tables).MaxAffordablePrice(req.Profile, req.Preferences, req.Scenario)
			if err != nil {
				return err
			}
			return a.write("Maximum Affordable Price", summary)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (YAML or JSON, - for stdin)")
	return cmd
}

type modelEntry struct {
	Name             string   `json:"name"`
	Trims            []string `json:"trims"`
	DefaultPrice     float64  `json:"default_price"`
	FuelEfficiency   float64  `json:"fuel_efficiency"`
	ReliabilityScore float64  `json:"reliability_score"`
}

func (a *app) newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the vehicle catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			models := make([]modelEntry, 0, len(a.tables.Vehicles))
			for _, v := range a.tables.Vehicles {
				models = append(models, modelEntry{
					Name:             v.Model,
					Trims:            v.Trims,
					DefaultPrice:     v.DefaultPrice,
					FuelEfficiency:   v.FuelEfficiency,
					ReliabilityScore: v.ReliabilityScore,
				})
			}
			return a.write("Toyota Models", map[string][]modelEntry{"models": models})
		},
	}
}
