package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"FinTrack/internal/model/dto"
	"FinTrack/internal/onboarding"
	"FinTrack/pkg/apiclient"
	"FinTrack/pkg/logger"
)

// errQuit 用户在提示处输入 q
var errQuit = errors.New("quit")

// wizard 终端引导：Navigator 只记录当前步骤，由 Run 循环提示填写并提交
type wizard struct {
	client *apiclient.Client
	routes onboarding.Routes
	userID string
	in     *bufio.Scanner
	out    io.Writer

	current onboarding.Step
}

func newWizard(client *apiclient.Client, routes onboarding.Routes, userID string, in io.Reader, out io.Writer) *wizard {
	return &wizard{
		client:  client,
		routes:  routes,
		userID:  userID,
		in:      bufio.NewScanner(in),
		out:     out,
		current: onboarding.StepNone,
	}
}

func (w *wizard) GoTo(_ context.Context, step onboarding.Step, path string) error {
	fmt.Fprintf(w.out, "\n==> %s (%s)\n", step, path)
	w.current = step
	return nil
}

// Run 打开起始路径后循环：提交当前步骤，再刷新状态，直到进入主页或无需引导
func (w *wizard) Run(ctx context.Context, session *onboarding.Session, startPath string) error {
	out := session.Visit(ctx, startPath)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.settle(out, session.Path())

		switch {
		case w.current == onboarding.StepMainLanding:
			fmt.Fprintln(w.out, "Onboarding complete, welcome to FinTrack.")
			return nil
		case out.Reason == onboarding.ReasonFetchFailed:
			fmt.Fprintf(w.out, "Could not load registration status: %v\n", out.Err)
			if onboarding.IsPermanent(out.Err) {
				return out.Err
			}
			if _, err := w.prompt("Press enter to retry"); err != nil {
				return err
			}
			out = session.Refresh(ctx)
			continue
		case w.current == onboarding.StepNone:
			if path := session.Path(); w.routes.WithinOnboarding(path) {
				return fmt.Errorf("no onboarding step for %s", path)
			}
			fmt.Fprintln(w.out, "Nothing left to do.")
			return nil
		}

		if err := w.submit(ctx, w.current); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return err
			}
			fmt.Fprintf(w.out, "Submit failed: %v\n", err)
			logger.Logger.Debug("Step submit failed",
				zap.String("step", w.current.String()),
				zap.Error(err),
			)
		}
		out = session.Refresh(ctx)
	}
}

// settle 没有发生跳转时，当前路径本身可能就是待填写的步骤
func (w *wizard) settle(out onboarding.Outcome, path string) {
	if out.Navigated() {
		return
	}
	if out.Reason != onboarding.ReasonEvaluated && out.Reason != onboarding.ReasonUnchanged {
		return
	}
	if step, ok := w.routes.StepOf(path); ok && step != onboarding.StepMainLanding {
		w.current = step
	}
}

func (w *wizard) submit(ctx context.Context, step onboarding.Step) error {
	switch step {
	case onboarding.StepProfile:
		return w.submitProfile(ctx)
	case onboarding.StepAddress:
		return w.submitAddress(ctx)
	case onboarding.StepContact:
		return w.submitContact(ctx)
	case onboarding.StepSettings:
		return w.submitSettings(ctx)
	default:
		return fmt.Errorf("unexpected step %q", step)
	}
}

func (w *wizard) submitProfile(ctx context.Context) error {
	fields, err := w.prompts("Username", "First name", "Last name", "Display name", "Recovery email")
	if err != nil {
		return err
	}
	_, err = w.client.CreateProfile(ctx, dto.CreateProfileRequest{
		UserID:        w.userID,
		Username:      fields[0],
		FirstName:     fields[1],
		LastName:      fields[2],
		DisplayName:   fields[3],
		RecoveryEmail: fields[4],
	})
	return err
}

func (w *wizard) submitAddress(ctx context.Context) error {
	countries, err := w.client.Countries(ctx)
	if err != nil {
		return err
	}
	for _, c := range countries {
		fmt.Fprintf(w.out, "  %d) %s %s\n", c.ID, c.Emoji, c.Name)
	}
	countryID, err := w.promptID("Country")
	if err != nil {
		return err
	}

	cities, err := w.client.Cities(ctx, countryID)
	if err != nil {
		return err
	}
	for _, c := range cities {
		fmt.Fprintf(w.out, "  %d) %s\n", c.ID, c.Name)
	}
	cityID, err := w.promptID("City")
	if err != nil {
		return err
	}

	address, err := w.prompt("Street address")
	if err != nil {
		return err
	}
	_, err = w.client.AddAddress(ctx, dto.AddAddressRequest{
		UserID:    w.userID,
		CountryID: countryID,
		CityID:    cityID,
		Address:   address,
	})
	return err
}

func (w *wizard) submitContact(ctx context.Context) error {
	phone, err := w.prompt("Phone number (E.164)")
	if err != nil {
		return err
	}

	req := dto.SendContactCodeRequest{UserID: w.userID, PhoneNumber: phone}
	_, err = w.client.SendContactCode(ctx, req)
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "VERIFICATION_SLIDER_REQUIRED" {
		param, perr := w.prompt("Slider verification param")
		if perr != nil {
			return perr
		}
		slider, serr := w.client.VerifySlider(ctx, dto.VerifySliderRequest{PhoneNumber: phone, CaptchaVerifyParam: param})
		if serr != nil {
			return serr
		}
		req.SliderToken = slider.SliderToken
		_, err = w.client.SendContactCode(ctx, req)
	}
	if err != nil {
		return err
	}

	code, err := w.prompt("Verification code")
	if err != nil {
		return err
	}
	data, err := w.client.AddContact(ctx, dto.AddContactRequest{UserID: w.userID, PhoneNumber: phone, Code: code})
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Phone %s saved\n", data.NumberMasked)
	return nil
}

func (w *wizard) submitSettings(ctx context.Context) error {
	currencies, err := w.client.Currencies(ctx)
	if err != nil {
		return err
	}
	for _, c := range currencies {
		fmt.Fprintf(w.out, "  %d) %s %s\n", c.ID, c.Code, c.Name)
	}
	currencyID, err := w.promptID("Base currency")
	if err != nil {
		return err
	}

	languages, err := w.client.Languages(ctx)
	if err != nil {
		return err
	}
	for _, l := range languages {
		fmt.Fprintf(w.out, "  %d) %s\n", l.ID, l.Name)
	}
	languageID, err := w.promptID("Language")
	if err != nil {
		return err
	}

	theme, err := w.prompt("Theme (light/dark/system)")
	if err != nil {
		return err
	}
	_, err = w.client.AddSettings(ctx, dto.AddSettingsRequest{
		UserID:          w.userID,
		BaseCurrencyID:  currencyID,
		ThemePreference: theme,
		LanguageID:      languageID,
	})
	return err
}

func (w *wizard) prompt(label string) (string, error) {
	fmt.Fprintf(w.out, "%s: ", label)
	if !w.in.Scan() {
		if err := w.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(w.in.Text())
	if line == "q" {
		return "", errQuit
	}
	return line, nil
}

func (w *wizard) prompts(labels ...string) ([]string, error) {
	values := make([]string, 0, len(labels))
	for _, l := range labels {
		v, err := w.prompt(l)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (w *wizard) promptID(label string) (int64, error) {
	v, err := w.prompt(label)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", strings.ToLower(label), v)
	}
	return id, nil
}
