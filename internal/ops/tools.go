package ops

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/domain/ranking"
	"github.com/harborloop/demoday/internal/domain/stage"
)

// registerTools wires the operator tools onto the server.
func registerTools(server *sdkmcp.Server, services Services, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stage",
		Description: "Get the current event stage and what it permits",
	}, getStageHandler(services))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_stage",
		Description: "Transition the event to a stage (lock, investment, ended). Backward moves require force",
	}, setStageHandler(services, logger))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "invalidate_stage",
		Description: "Drop the cached stage so the next read observes the store",
	}, invalidateStageHandler(services))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_rankings",
		Description: "Get the ranked project board for the current stage",
	}, getRankingsHandler(services))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "verify_budgets",
		Description: "Audit the ledger: recompute every investor's commitment and flag quota violations",
	}, verifyBudgetsHandler(services))
}

type stageOutput struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Time           string `json:"time"`
	CanInvest      bool   `json:"can_invest"`
	TrafficAllowed bool   `json:"traffic_allowed"`
}

func stageOutputFor(current stage.Stage) stageOutput {
	return stageOutput{
		Code:           string(current),
		Name:           current.Name(),
		Time:           current.TimeWindow(),
		CanInvest:      current.CanInvest(),
		TrafficAllowed: current.AllowsTrafficSync(),
	}
}

func getStageHandler(services Services) sdkmcp.ToolHandlerFor[struct{}, stageOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, stageOutput, error) {
		current, err := services.Stages.Current(ctx)
		if err != nil {
			return nil, stageOutput{}, err
		}
		return nil, stageOutputFor(current), nil
	}
}

type setStageInput struct {
	Stage string `json:"stage" jsonschema:"target stage code: lock, investment or ended"`
	Force bool   `json:"force,omitempty" jsonschema:"allow a backward transition (administrative override)"`
}

func setStageHandler(services Services, logger *slog.Logger) sdkmcp.ToolHandlerFor[setStageInput, stageOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setStageInput) (*sdkmcp.CallToolResult, stageOutput, error) {
		target, err := stage.Parse(in.Stage)
		if err != nil {
			return nil, stageOutput{}, fmt.Errorf("stage %q: %w", in.Stage, err)
		}
		if err := services.Stages.TransitionTo(ctx, target, in.Force); err != nil {
			return nil, stageOutput{}, err
		}
		logger.Info("stage set via operator tool", "stage", target, "forced", in.Force)
		return nil, stageOutputFor(target), nil
	}
}

type invalidateOutput struct {
	Invalidated bool `json:"invalidated"`
}

func invalidateStageHandler(services Services) sdkmcp.ToolHandlerFor[struct{}, invalidateOutput] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, invalidateOutput, error) {
		services.Stages.Invalidate()
		return nil, invalidateOutput{Invalidated: true}, nil
	}
}

type rankingRow struct {
	Rank       int     `json:"rank"`
	ProjectID  int64   `json:"project_id"`
	Name       string  `json:"name"`
	UV         int64   `json:"uv"`
	Investment int64   `json:"investment"`
	Score      float64 `json:"score"`
}

type rankingsOutput struct {
	Stage    string       `json:"stage"`
	Rankings []rankingRow `json:"rankings"`
}

func getRankingsHandler(services Services) sdkmcp.ToolHandlerFor[struct{}, rankingsOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, rankingsOutput, error) {
		board, err := loadBoard(ctx, services)
		if err != nil {
			return nil, rankingsOutput{}, err
		}

		totals := make(map[int64]int64, len(board.projects))
		for _, inv := range board.investments {
			totals[inv.ProjectID] += inv.Amount
		}
		byID := make(map[int64]project.Project, len(board.projects))
		candidates := make([]ranking.Candidate, 0, len(board.projects))
		for _, p := range board.projects {
			if !p.Enabled {
				continue
			}
			byID[p.ID] = p
			candidates = append(candidates, ranking.Candidate{
				ID:         p.ID,
				UV:         p.UV,
				Investment: totals[p.ID],
			})
		}

		ranked := ranking.Rank(candidates, board.stage)
		rows := make([]rankingRow, 0, len(ranked))
		for _, entry := range ranked {
			rows = append(rows, rankingRow{
				Rank:       entry.Rank,
				ProjectID:  entry.ID,
				Name:       byID[entry.ID].Name,
				UV:         entry.UV,
				Investment: entry.Investment,
				Score:      entry.Score,
			})
		}
		return nil, rankingsOutput{Stage: string(board.stage), Rankings: rows}, nil
	}
}

type budgetRow struct {
	Account    string `json:"account"`
	Name       string `json:"name"`
	Quota      int64  `json:"quota"`
	Committed  int64  `json:"committed"`
	Remaining  int64  `json:"remaining"`
	OverBudget bool   `json:"over_budget"`
}

type budgetsOutput struct {
	Investors  []budgetRow `json:"investors"`
	Violations int         `json:"violations"`
}

// verifyBudgetsHandler recomputes each investor's commitment from the raw
// investment set and reports any account whose total exceeds its quota. A
// violation means a write slipped past the ledger and needs manual review.
func verifyBudgetsHandler(services Services) sdkmcp.ToolHandlerFor[struct{}, budgetsOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, budgetsOutput, error) {
		investors, err := services.Investors.List(ctx)
		if err != nil {
			return nil, budgetsOutput{}, fmt.Errorf("listing investors: %w", err)
		}
		investments, err := services.Investments.List(ctx)
		if err != nil {
			return nil, budgetsOutput{}, fmt.Errorf("listing investments: %w", err)
		}

		committed := make(map[string]int64, len(investors))
		for _, inv := range investments {
			committed[inv.Account] += inv.Amount
		}

		out := budgetsOutput{Investors: make([]budgetRow, 0, len(investors))}
		for _, inv := range investors {
			total := committed[inv.Username]
			row := budgetRow{
				Account:    inv.Username,
				Name:       inv.Name,
				Quota:      inv.Quota,
				Committed:  total,
				Remaining:  inv.Quota - total,
				OverBudget: total > inv.Quota,
			}
			if row.OverBudget {
				out.Violations++
			}
			out.Investors = append(out.Investors, row)
		}
		sort.Slice(out.Investors, func(i, j int) bool {
			return out.Investors[i].Account < out.Investors[j].Account
		})
		return nil, out, nil
	}
}

type boardData struct {
	projects    []project.Project
	investments []ledger.Investment
	stage       stage.Stage
}

func loadBoard(ctx context.Context, services Services) (*boardData, error) {
	var data boardData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.projects, err = services.Projects.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.investments, err = services.Investments.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.stage, err = services.Stages.Current(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading ranking data: %w", err)
	}
	return &data, nil
}
