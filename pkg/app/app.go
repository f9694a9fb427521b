package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/recipes/pkg/app/screens"
	"github.com/kerbaras/recipes/pkg/services"
)

type App struct {
	ctx      context.Context
	finder   *services.Finder
	exporter *services.Exporter
}

func NewApp(ctx context.Context, finder *services.Finder, exporter *services.Exporter) *App {
	return &App{ctx: ctx, finder: finder, exporter: exporter}
}

func (a *App) Run() error {
	model := screens.NewRootScreen(a.ctx, a.finder, a.exporter)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}
