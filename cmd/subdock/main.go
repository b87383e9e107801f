package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/akamensky/argparse"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/subdock/subdock-cli/internal/api"
	"github.com/subdock/subdock-cli/internal/config"
	"github.com/subdock/subdock-cli/internal/credstore"
	"github.com/subdock/subdock-cli/internal/gateway"
	"github.com/subdock/subdock-cli/internal/models"
	"github.com/subdock/subdock-cli/internal/router"
	"github.com/subdock/subdock-cli/internal/siteconfig"
)

type app struct {
	guard    *router.Guard
	auth     *api.Auth
	subs     *api.Subscriptions
	settings *api.Settings
	site     *siteconfig.Loader

	sessionExpired bool
}

func main() {
	parser := argparse.NewParser("subdock", "Terminal client for a SubDock subscription tracker")
	serverURL := parser.String("s", "server", &argparse.Options{Help: "Service URL, overrides the config file"})

	loginCmd := parser.NewCommand("login", "Log in and store the session token")
	logoutCmd := parser.NewCommand("logout", "Clear the stored session token")
	statusCmd := parser.NewCommand("status", "Show session and site information")

	listCmd := parser.NewCommand("list", "List subscriptions")

	addCmd := parser.NewCommand("add", "Create a subscription")
	addName := addCmd.String("", "name", &argparse.Options{Required: true, Help: "Subscription name"})
	addAmount := addCmd.Float("", "amount", &argparse.Options{Required: true, Help: "Amount per cycle"})
	addCurrency := addCmd.String("", "currency", &argparse.Options{Default: "CNY", Help: "Currency code"})
	addStart := addCmd.String("", "start", &argparse.Options{Required: true, Help: "Start date (YYYY-MM-DD)"})
	addCycleValue := addCmd.Int("", "cycle", &argparse.Options{Default: 1, Help: "Renewal cycle length"})
	addCycleUnit := addCmd.String("", "unit", &argparse.Options{Default: "month", Help: "Cycle unit: day, month, quarter, half_year, year"})
	addExpire := addCmd.String("", "expire", &argparse.Options{Help: "Expiry date (YYYY-MM-DD), omit to let the server compute it"})
	addRemind := addCmd.Int("", "remind", &argparse.Options{Default: 3, Help: "Days before expiry to notify"})
	addAutoRenew := addCmd.Flag("", "auto-renew", &argparse.Options{Help: "Renew automatically on expiry"})
	addRemark := addCmd.String("", "remark", &argparse.Options{Help: "Free-form note"})

	updateCmd := parser.NewCommand("update", "Replace a subscription")
	updateID := updateCmd.Int("", "id", &argparse.Options{Required: true, Help: "Subscription id"})
	updateName := updateCmd.String("", "name", &argparse.Options{Required: true, Help: "Subscription name"})
	updateAmount := updateCmd.Float("", "amount", &argparse.Options{Required: true, Help: "Amount per cycle"})
	updateCurrency := updateCmd.String("", "currency", &argparse.Options{Default: "CNY", Help: "Currency code"})
	updateStart := updateCmd.String("", "start", &argparse.Options{Required: true, Help: "Start date (YYYY-MM-DD)"})
	updateCycleValue := updateCmd.Int("", "cycle", &argparse.Options{Default: 1, Help: "Renewal cycle length"})
	updateCycleUnit := updateCmd.String("", "unit", &argparse.Options{Default: "month", Help: "Cycle unit: day, month, quarter, half_year, year"})
	updateExpire := updateCmd.String("", "expire", &argparse.Options{Help: "Expiry date (YYYY-MM-DD)"})
	updateRemind := updateCmd.Int("", "remind", &argparse.Options{Default: 3, Help: "Days before expiry to notify"})
	updateAutoRenew := updateCmd.Flag("", "auto-renew", &argparse.Options{Help: "Renew automatically on expiry"})
	updateRemark := updateCmd.String("", "remark", &argparse.Options{Help: "Free-form note"})

	deleteCmd := parser.NewCommand("delete", "Remove a subscription")
	deleteID := deleteCmd.Int("", "id", &argparse.Options{Required: true, Help: "Subscription id"})

	notifyCmd := parser.NewCommand("notify", "Send a one-off test notification for a subscription")
	notifyID := notifyCmd.Int("", "id", &argparse.Options{Required: true, Help: "Subscription id"})

	settingsCmd := parser.NewCommand("settings", "Show or change notification settings")
	setHours := settingsCmd.String("", "hours", &argparse.Options{Help: "Notify hours, comma-joined (e.g. 9,18)"})
	setTelegramToken := settingsCmd.String("", "telegram-token", &argparse.Options{Help: "Telegram bot token"})
	setTelegramChat := settingsCmd.String("", "telegram-chat", &argparse.Options{Help: "Telegram chat id"})
	setBarkURL := settingsCmd.String("", "bark-url", &argparse.Options{Help: "Bark push URL"})
	setTest := settingsCmd.String("", "test", &argparse.Options{Help: "Send a test notification: telegram or bark"})

	passwdCmd := parser.NewCommand("passwd", "Change the account password")

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := config.Load(filepath.Join(config.Dir(), "config.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	store, err := credstore.New(cfg.DataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open credential store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	a := &app{}

	// A 401 on a first login attempt just means wrong credentials; only an
	// established session gets the expiry notice and the forced login.
	startToken, _ := store.Get()
	hadSession := startToken != ""

	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.ServerURL,
		Store:   store,
		OnUnauthorized: func() {
			if hadSession {
				a.sessionExpired = true
				fmt.Fprintln(os.Stderr, "Session expired, please log in again.")
			}
		},
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}

	a.guard = router.NewGuard(store)
	a.auth = api.NewAuth(gw, store)
	a.subs = api.NewSubscriptions(gw)
	a.settings = api.NewSettings(gw)
	a.site = siteconfig.NewLoader(api.NewSiteConfig(gw), logger)

	ctx := context.Background()
	a.site.Fetch(ctx)

	switch {
	case loginCmd.Happened():
		err = a.navigate(ctx, router.RouteLogin, a.loginScreen)
	case logoutCmd.Happened():
		err = a.logout()
	case statusCmd.Happened():
		err = a.status(ctx)
	case listCmd.Happened():
		err = a.navigate(ctx, router.RouteSubscriptions, a.list)
	case addCmd.Happened():
		sub := models.Subscription{
			Name:       *addName,
			Amount:     *addAmount,
			Currency:   *addCurrency,
			StartDate:  *addStart,
			CycleValue: *addCycleValue,
			CycleUnit:  models.CycleUnit(*addCycleUnit),
			ExpireDate: optionalDate(*addExpire),
			AutoRenew:  *addAutoRenew,
			RemindDays: *addRemind,
			Remark:     *addRemark,
		}
		err = a.navigate(ctx, router.RouteSubscriptions, func(ctx context.Context) error {
			return a.add(ctx, sub)
		})
	case updateCmd.Happened():
		sub := models.Subscription{
			Name:       *updateName,
			Amount:     *updateAmount,
			Currency:   *updateCurrency,
			StartDate:  *updateStart,
			CycleValue: *updateCycleValue,
			CycleUnit:  models.CycleUnit(*updateCycleUnit),
			ExpireDate: optionalDate(*updateExpire),
			AutoRenew:  *updateAutoRenew,
			RemindDays: *updateRemind,
			Remark:     *updateRemark,
		}
		id := int64(*updateID)
		err = a.navigate(ctx, router.RouteSubscriptions, func(ctx context.Context) error {
			return a.update(ctx, id, sub)
		})
	case deleteCmd.Happened():
		id := int64(*deleteID)
		err = a.navigate(ctx, router.RouteSubscriptions, func(ctx context.Context) error {
			return a.remove(ctx, id)
		})
	case notifyCmd.Happened():
		id := int64(*notifyID)
		err = a.navigate(ctx, router.RouteSubscriptions, func(ctx context.Context) error {
			return a.testNotify(ctx, id)
		})
	case settingsCmd.Happened():
		err = a.navigate(ctx, router.RouteSettings, func(ctx context.Context) error {
			return a.settingsScreen(ctx, *setHours, *setTelegramToken, *setTelegramChat, *setBarkURL, *setTest)
		})
	case passwdCmd.Happened():
		err = a.navigate(ctx, router.RouteSettings, func(ctx context.Context) error {
			return a.passwd(ctx)
		})
	default:
		fmt.Print(parser.Usage(nil))
		return
	}

	if err != nil {
		if a.sessionExpired {
			// The 401 handler already tore the session down; the only place
			// left to go is the login screen.
			if loginErr := a.loginScreen(ctx); loginErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", loginErr)
				os.Exit(1)
			}
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// navigate runs the guard before entering a screen. On redirect the
// resolved route's screen runs instead of the requested one.
func (a *app) navigate(ctx context.Context, target string, screen func(context.Context) error) error {
	resolved, err := a.guard.Resolve(target)
	if err != nil {
		return err
	}
	if resolved.Name == target {
		return screen(ctx)
	}

	switch resolved.Name {
	case router.RouteLogin:
		fmt.Println("Not logged in.")
		return a.loginScreen(ctx)
	case router.DefaultRoute:
		fmt.Println("Already logged in.")
		return a.list(ctx)
	default:
		return screen(ctx)
	}
}

func (a *app) loginScreen(ctx context.Context) error {
	fmt.Printf("Log in to %s\n", a.site.WebsiteTitle())

	username, err := promptLine("Username: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	resp, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Logged in as %s\n", resp.Username)
	return nil
}

func (a *app) logout() error {
	if err := a.auth.Logout(); err != nil {
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}

func (a *app) status(ctx context.Context) error {
	fmt.Printf("Site: %s\n", a.site.WebsiteTitle())

	token, err := a.auth.Token()
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Println("Logged in")

	// Display only. The claims are not verified here and never gate
	// anything; the server alone decides whether the token still works.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if username, ok := claims["username"].(string); ok && username != "" {
			fmt.Printf("User: %s\n", username)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Printf("Token expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func (a *app) list(ctx context.Context) error {
	subs, err := a.subs.List(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No subscriptions yet. Add one with: subdock add")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAMOUNT\tCYCLE\tEXPIRES\tDAYS LEFT")
	now := time.Now()
	for _, s := range subs {
		expire := "-"
		daysLeft := "-"
		if s.ExpireDate != nil && *s.ExpireDate != "" {
			expire = *s.ExpireDate
			if days, ok := s.DaysLeft(now); ok {
				daysLeft = fmt.Sprintf("%d", days)
				if days < 0 {
					daysLeft = "expired"
				}
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f %s\t%d %s\t%s\t%s\n",
			s.ID, s.Name, s.Amount, s.Currency, s.CycleValue, s.CycleUnit, expire, daysLeft)
	}
	return w.Flush()
}

func (a *app) add(ctx context.Context, sub models.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	if sub.ExpireDate == nil {
		if projected, err := sub.ExpectedExpireDate(); err == nil {
			fmt.Printf("No expiry given, the server will set %s\n", projected)
		}
	}

	created, err := a.subs.Create(ctx, sub)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created subscription %d (%s)\n", created.ID, created.Name)
	if created.ExpireDate != nil {
		fmt.Printf("  Expires %s\n", *created.ExpireDate)
	}
	return nil
}

func (a *app) update(ctx context.Context, id int64, sub models.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	updated, err := a.subs.Update(ctx, id, sub)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Updated subscription %d (%s)\n", id, updated.Name)
	return nil
}

func (a *app) remove(ctx context.Context, id int64) error {
	if err := a.subs.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted subscription %d\n", id)
	return nil
}

func (a *app) testNotify(ctx context.Context, id int64) error {
	if err := a.subs.TestNotify(ctx, id); err != nil {
		return err
	}
	fmt.Printf("✓ Test notification sent for subscription %d\n", id)
	return nil
}

func (a *app) settingsScreen(ctx context.Context, hours, telegramToken, telegramChat, barkURL, test string) error {
	if test != "" {
		if test != api.ChannelTelegram && test != api.ChannelBark {
			return fmt.Errorf("unknown channel %q, expected telegram or bark", test)
		}
		if err := a.settings.TestNotify(ctx, test); err != nil {
			return err
		}
		fmt.Printf("✓ Test notification sent via %s\n", test)
		return nil
	}

	current, err := a.settings.Get(ctx)
	if err != nil {
		return err
	}

	if hours == "" && telegramToken == "" && telegramChat == "" && barkURL == "" {
		fmt.Printf("Notify hours:       %s\n", current.NotifyHours)
		fmt.Printf("Telegram bot token: %s\n", masked(current.TelegramBotToken))
		fmt.Printf("Telegram chat id:   %s\n", current.TelegramChatID)
		fmt.Printf("Bark URL:           %s\n", current.BarkURL)
		return nil
	}

	if hours != "" {
		// Normalize through the structured form so "18,9" is stored as "9,18".
		parsed, err := models.ParseNotifyHours(hours)
		if err != nil {
			return err
		}
		current.NotifyHours = models.JoinNotifyHours(parsed)
	}
	if telegramToken != "" {
		current.TelegramBotToken = telegramToken
	}
	if telegramChat != "" {
		current.TelegramChatID = telegramChat
	}
	if barkURL != "" {
		current.BarkURL = barkURL
	}

	if err := a.settings.Update(ctx, current); err != nil {
		return err
	}
	fmt.Println("✓ Settings updated")
	return nil
}

func (a *app) passwd(ctx context.Context) error {
	oldPassword, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	newPassword, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Repeat new password: ")
	if err != nil {
		return err
	}
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := a.auth.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return err
	}
	fmt.Println("✓ Password changed")
	return nil
}

func optionalDate(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func masked(s string) string {
	if len(s) <= 6 {
		return strings.Repeat("*", len(s))
	}
	return s[:3] + "..." + s[len(s)-3:]
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
