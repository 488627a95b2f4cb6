package runner

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/facade"
	"github.com/testforge/hrm-e2e/internal/fixtures"
	"github.com/testforge/hrm-e2e/internal/pages"
)

// Env is what a scenario attempt gets to work with
type Env struct {
	App    *facade.Application
	Data   *fixtures.Generator
	Logger *zap.Logger
}

// Scenario is one named end-to-end check
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

// recordWait bounds how long a created row may take to show up in a table
const recordWait = 15 * time.Second

// Catalog returns the built-in scenarios sorted by name
func Catalog() []Scenario {
	all := []Scenario{
		{
			Name:        "login/valid-credentials",
			Description: "signs in with the configured account and lands on the dashboard",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
					return err
				}
				return env.App.Dashboard().VerifyLoaded(ctx)
			},
		},
		{
			Name:        "login/invalid-credentials",
			Description: "a wrong password shows the error alert",
			Run: func(ctx context.Context, env *Env) error {
				login := env.App.Login()
				if err := login.Navigate(ctx); err != nil {
					return err
				}
				creds := login.Base().Credentials()
				creds.Password = env.Data.RandomString(12)
				if err := login.Login(ctx, creds); err != nil {
					return err
				}
				return login.VerifyLoginFailed(ctx)
			},
		},
		{
			Name:        "login/logout",
			Description: "signs in, signs out and is back on the login form",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
					return err
				}
				return env.App.Logout(ctx)
			},
		},
		{
			Name:        "dashboard/core-sections",
			Description: "the side menu lists every core module",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
					return err
				}
				return env.App.Dashboard().VerifyMenuItemsVisible(ctx, pages.CoreSections()...)
			},
		},
		{
			Name:        "admin/menus",
			Description: "the admin module shows every top menu",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
					return err
				}
				if err := env.App.NavigateToAdmin(ctx); err != nil {
					return err
				}
				if err := env.App.Admin().VerifyLoaded(ctx); err != nil {
					return err
				}
				return env.App.Admin().VerifyAllMenusVisible(ctx)
			},
		},
		{
			Name:        "admin/user-search",
			Description: "searching system users for the admin account finds its row",
			Run: func(ctx context.Context, env *Env) error {
				if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
					return err
				}
				if err := env.App.NavigateToAdmin(ctx); err != nil {
					return err
				}
				admin := env.App.Admin()
				if err := admin.NavigateToUserManagement(ctx); err != nil {
					return err
				}
				user := admin.Base().Credentials().Username
				if err := admin.SearchUser(ctx, user); err != nil {
					return err
				}
				return env.App.WaitForRecord(ctx, user, recordWait)
			},
		},
		{
			Name:        "admin/job-title-lifecycle",
			Description: "creates a uniquely named job title, finds it and deletes it",
			Run:         jobTitleLifecycle,
		},
		{
			Name:        "admin/work-shift-lifecycle",
			Description: "creates a uniquely named work shift, finds it and deletes it",
			Run:         workShiftLifecycle,
		},
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func jobTitleLifecycle(ctx context.Context, env *Env) error {
	title, err := env.Data.Reserve(ctx, func() string { return env.Data.UniqueJobTitle("QA Engineer", false) })
	if err != nil {
		return err
	}
	env.Logger.Info("job title reserved", zap.String("title", title))

	if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
		return err
	}
	jt := domain.JobTitle{Title: title, Description: "Created by the hrm-e2e suite"}
	if err := env.App.AddJobTitle(ctx, jt); err != nil {
		return err
	}
	if err := env.App.WaitForRecord(ctx, title, recordWait); err != nil {
		return err
	}
	if err := env.App.RemoveJobTitle(ctx, title); err != nil {
		return err
	}
	return env.App.Admin().VerifyRowAbsent(ctx, title)
}

func workShiftLifecycle(ctx context.Context, env *Env) error {
	name, err := env.Data.Reserve(ctx, func() string { return env.Data.UniqueWorkShiftName("Night", false) })
	if err != nil {
		return err
	}
	env.Logger.Info("work shift reserved", zap.String("name", name))

	if err := env.App.SignIn(ctx, domain.Credentials{}); err != nil {
		return err
	}
	if err := env.App.AddWorkShift(ctx, domain.WorkShift{Name: name, HoursFrom: "22:00", HoursTo: "06:00"}); err != nil {
		return err
	}
	if err := env.App.WaitForRecord(ctx, name, recordWait); err != nil {
		return err
	}
	if err := env.App.RemoveWorkShift(ctx, name); err != nil {
		return err
	}
	return env.App.Admin().VerifyRowAbsent(ctx, name)
}

// Select returns the scenarios whose name matches any of the glob
// patterns, in catalog order. No patterns selects everything.
func Select(all []Scenario, patterns ...string) ([]Scenario, error) {
	if len(patterns) == 0 {
		return all, nil
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, domain.ErrValidationField("scenario", fmt.Sprintf("bad pattern %q: %v", p, err))
		}
	}
	var out []Scenario
	for _, sc := range all {
		for _, p := range patterns {
			if ok, _ := path.Match(p, sc.Name); ok || p == sc.Name {
				out = append(out, sc)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrValidationField("scenario", fmt.Sprintf("no scenario matches %v", patterns))
	}
	return out, nil
}
