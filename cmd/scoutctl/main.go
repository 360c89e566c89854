package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"scout-assist/config"
	"scout-assist/internal/client"
	"scout-assist/internal/dto"
	"scout-assist/internal/session"
	applogger "scout-assist/pkg/logger"
)

type app struct {
	cfg     *config.ClientConfig
	api     *client.Client
	session *session.Manager
	out     io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":     {"login -u <username>", runLogin},
	"logout":    {"logout", runLogout},
	"status":    {"status", runStatus},
	"job-types": {"job-types", runJobTypes},
	"rules":     {"rules", runRules},
	"templates": {"templates", runTemplates},
	"generate":  {"generate -job-type <id> -rule <id> -profile <file> [-template <id>] [-industry ..] [-requirement <file>] [-offer <file>]", runGenerate},
	"history":   {"history [-page n] [-size n]", runHistory},
	"export":    {"export [-format csv|xlsx] [-o path]", runExport},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	_ = config.LoadDotEnv()
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sessionFile := cfg.SessionFile
	if sessionFile == "" {
		if sessionFile, err = session.DefaultPath(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger := applogger.NewCLI(os.Getenv("SCOUT_DEBUG") != "")
	defer logger.Sync()

	a := &app{
		cfg:     cfg,
		api:     client.New(cfg.BaseURL, cfg.Timeout),
		session: session.NewManager(session.PolicyFromConfig(&cfg.Session), session.SystemClock{}, session.NewFileStorage(sessionFile), logger),
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, a, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "エラー:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scoutctl <command> [flags]")
	for _, name := range []string{"login", "logout", "status", "job-types", "rules", "templates", "generate", "history", "export"} {
		fmt.Fprintln(os.Stderr, "  "+commands[name].usage)
	}
}

// authorize 校验本地会话并记录一次操作
func (a *app) authorize() error {
	s, err := a.session.Touch()
	switch {
	case errors.Is(err, session.ErrExpired):
		return errors.New("セッションの有効期限が切れました。再度ログインしてください")
	case errors.Is(err, session.ErrNoSession):
		return errors.New("ログインしていません。scoutctl login を実行してください")
	case err != nil:
		return err
	}
	a.api.SetToken(s.Token)
	return nil
}

// apiError 服务端拒绝凭证时清除本地会话
func (a *app) apiError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuth() {
		_ = a.session.Expire()
	}
	return err
}

// ── 认证 ──

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "ユーザー名")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-u は必須です")
	}

	password := os.Getenv("SCOUT_PASSWORD")
	if password == "" {
		fmt.Fprint(a.out, "パスワード: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}

	tok, err := a.api.Login(ctx, *username, password)
	if err != nil {
		return err
	}
	if _, err := a.session.Begin(tok.Token, tok.User.Username, tok.User.Role); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s としてログインしました（%s）\n", tok.User.Username, tok.User.Role)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.authorize(); err == nil {
		if err := a.api.Logout(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "サーバー側のログアウトに失敗しました:", err)
		}
	}
	if err := a.session.Expire(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ログアウトしました")
	return nil
}

func runStatus(_ context.Context, a *app, _ []string) error {
	s, ev, err := a.session.Check()
	switch {
	case errors.Is(err, session.ErrNoSession):
		fmt.Fprintln(a.out, "ログインしていません")
		return nil
	case errors.Is(err, session.ErrExpired):
		fmt.Fprintf(a.out, "セッションの有効期限が切れました（%s）\n", ev.Status)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(a.out, "ユーザー: %s（%s）\n残り時間: %s\n", s.Username, s.Role, ev.Remaining.Round(time.Second))
	if ev.Status == session.StatusWarning {
		fmt.Fprintf(a.out, "あと %d 分でセッションが切れます\n", ev.WarningMinutes())
	}
	return nil
}

// ── 主数据 ──

func runJobTypes(ctx context.Context, a *app, _ []string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	list, err := a.api.JobTypes(ctx)
	if err != nil {
		return a.apiError(err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t職種")
	for _, jt := range list {
		fmt.Fprintf(tw, "%d\t%s\n", jt.ID, jt.Name)
	}
	return tw.Flush()
}

func runRules(ctx context.Context, a *app, _ []string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	list, err := a.api.OutputRules(ctx)
	if err != nil {
		return a.apiError(err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t出力ルール")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%s\n", r.ID, r.Name)
	}
	return tw.Flush()
}

func runTemplates(ctx context.Context, a *app, _ []string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	list, err := a.api.Templates(ctx)
	if err != nil {
		return a.apiError(err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tテンプレート\t職種\t業種")
	for _, t := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.JobTypeName, t.Industry)
	}
	return tw.Flush()
}

// ── 生成 ──

func runGenerate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		jobTypeID   = fs.Uint("job-type", 0, "職種 ID")
		ruleID      = fs.Uint("rule", 0, "出力ルール ID")
		templateID  = fs.Uint("template", 0, "テンプレート ID（任意。未入力の項目を補完）")
		industry    = fs.String("industry", "", "業種")
		requirement = fs.String("requirement", "", "企業の求める人物像（ファイル）")
		offer       = fs.String("offer", "", "オファー文テンプレート（ファイル）")
		profileFile = fs.String("profile", "", "学生プロフィール（ファイル、- で標準入力）")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.authorize(); err != nil {
		return err
	}

	req := &dto.GenerateRequest{
		JobTypeID:    *jobTypeID,
		OutputRuleID: *ruleID,
		Industry:     *industry,
	}
	var err error
	if req.StudentProfile, err = readText(*profileFile); err != nil {
		return err
	}
	if req.CompanyRequirement, err = readText(*requirement); err != nil {
		return err
	}
	if req.OfferTemplate, err = readText(*offer); err != nil {
		return err
	}

	if *templateID != 0 {
		id := *templateID
		req.TemplateID = &id
		if err := fillFromTemplate(ctx, a, req); err != nil {
			return err
		}
	}

	out, err := a.api.Generate(ctx, req)
	if err != nil {
		return a.apiError(err)
	}
	fmt.Fprintln(a.out, out.Comment)
	fmt.Fprintf(a.out, "\n---\ntokens: %d (in %d / out %d)  cost: $%s\n",
		out.Usage.TotalTokens, out.Usage.InputTokens, out.Usage.OutputTokens, out.Usage.TotalCost)
	return nil
}

// fillFromTemplate 用模板内容补全未指定的字段
func fillFromTemplate(ctx context.Context, a *app, req *dto.GenerateRequest) error {
	list, err := a.api.Templates(ctx)
	if err != nil {
		return a.apiError(err)
	}
	for _, t := range list {
		if t.ID != *req.TemplateID {
			continue
		}
		if req.JobTypeID == 0 {
			req.JobTypeID = t.JobTypeID
		}
		if req.OutputRuleID == 0 && t.OutputRuleID != nil {
			req.OutputRuleID = *t.OutputRuleID
		}
		if req.Industry == "" {
			req.Industry = t.Industry
		}
		if req.CompanyRequirement == "" {
			req.CompanyRequirement = t.CompanyRequirement
		}
		if req.OfferTemplate == "" {
			req.OfferTemplate = t.OfferTemplate
		}
		return nil
	}
	return fmt.Errorf("テンプレート %d が見つかりません", *req.TemplateID)
}

func readText(path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		raw, err := io.ReadAll(os.Stdin)
		return string(raw), err
	default:
		raw, err := os.ReadFile(path)
		return string(raw), err
	}
}

// ── 履歴 ──

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	page := fs.Int("page", 1, "ページ")
	size := fs.Int("size", 20, "件数")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.authorize(); err != nil {
		return err
	}

	list, p, err := a.api.MyHistory(ctx, *page, *size)
	if err != nil {
		return a.apiError(err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t日時\t職種\t業種\tテンプレート")
	for _, h := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", h.ID, h.CreatedAt.Local().Format("2006/01/02 15:04"), h.JobType, h.Industry, h.TemplateName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d / %d ページ（全 %d 件）\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "csv", "csv または xlsx")
	output := fs.String("o", "", "出力先（省略時はサーバー指定のファイル名）")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "csv" && *format != "xlsx" {
		return fmt.Errorf("未対応の形式です: %s", *format)
	}
	if err := a.authorize(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(".", "scoutctl-export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := a.api.DownloadHistory(ctx, *format, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return a.apiError(err)
	}

	dest := *output
	if dest == "" {
		dest = filepath.Base(name)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s に保存しました\n", dest)
	return nil
}
