package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2/terminal"
	"go.uber.org/zap"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/handlers"
)

// runInteractiveMode shows the stock board, then loops over a menu until the
// user exits. Changes to the config file are picked up between actions.
func runInteractiveMode(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	displayWelcomeBanner(a.out, a.cfg)

	reloads := make(chan config.Config, 1)
	if a.manager != nil {
		err := a.manager.Watch(ctx, func(cfg config.Config) {
			select {
			case reloads <- cfg:
			default:
				// keep only the latest
				select {
				case <-reloads:
				default:
				}
				reloads <- cfg
			}
		})
		if err != nil {
			a.logger.Warn("config hot reload unavailable", zap.Error(err))
		}
	}

	return a.run(ctx, true, func(ctx context.Context) error {
		a.stock.PollAll(ctx, a.cfg.TrackedItems)

		for {
			select {
			case cfg := <-reloads:
				a.reload(cfg)
				fmt.Fprintln(a.out, completedStyle.Render("🔄 Configuration reloaded"))
			default:
			}

			action, err := PromptForAction()
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			if err != nil {
				return err
			}

			if err := a.dispatch(ctx, action); err != nil {
				if errors.Is(err, terminal.InterruptErr) {
					continue
				}
				a.logger.Debug("action failed", zap.String("action", action), zap.Error(err))
			}
			if action == actionExit {
				fmt.Fprintln(a.out, "👋 Thank you for using Depot!")
				return nil
			}
			fmt.Fprintln(a.out)
		}
	})
}

// dispatch runs one menu action. Handler failures are already rendered or
// logged, so the error is informational.
func (a *app) dispatch(ctx context.Context, action string) error {
	switch action {
	case actionStock:
		a.stock.PollAll(ctx, a.cfg.TrackedItems)
		a.term.Board("Stock", a.page.Elements())
		return nil

	case actionOrder:
		item, err := PromptForItem(a.cfg.TrackedItems)
		if err != nil {
			return err
		}
		quantity, err := PromptForQuantity()
		if err != nil {
			return err
		}
		return a.orders.Submit(ctx, item, quantity)

	case actionSignup:
		username, err := PromptForUsername()
		if err != nil {
			return err
		}
		password, confirm, err := PromptForPasswords()
		if err != nil {
			return err
		}
		return a.signup.Submit(ctx, handlers.SignupForm{
			Username:        username,
			Password:        password,
			PasswordConfirm: confirm,
		})

	case actionUpload:
		path, err := PromptForReportPath()
		if err != nil {
			return err
		}
		req, err := handlers.OpenFile(path)
		if err != nil {
			return err
		}
		return a.upload.Submit(ctx, req)

	case actionHistory:
		if a.store == nil {
			fmt.Fprintln(a.out, pendingStyle.Render("History is disabled."))
			return nil
		}
		entries, err := a.store.List(ctx, 20)
		if err != nil {
			return err
		}
		showHistory(a.out, entries)
		return nil

	case actionConfig:
		showConfig(a.out, a.cfg, a.configPath())
		return nil
	}
	return nil
}
