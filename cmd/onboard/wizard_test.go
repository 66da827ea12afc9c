package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/internal/model"
	"FinTrack/internal/model/dto"
	"FinTrack/internal/onboarding"
	"FinTrack/pkg/apiclient"
)

// fakeAPI 内存中的注册状态，每个提交接口只置位对应标志
type fakeAPI struct {
	mu          sync.Mutex
	status      dto.UserStatusData
	failProfile bool
	codes       int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reply := func(status int, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}

	switch r.URL.Path {
	case "/v1/user/status/42":
		reply(http.StatusOK, f.status)
	case "/v1/user/users":
		if f.failProfile {
			f.failProfile = false
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":"USERNAME_TAKEN","message":"taken"}}`))
			return
		}
		f.status.IsUser = true
		reply(http.StatusCreated, dto.ProfileData{UserID: "42"})
	case "/v1/constant/countries":
		reply(http.StatusOK, model.SeedCountries)
	case "/v1/constant/cities":
		reply(http.StatusOK, model.SeedCities[:3])
	case "/v1/user/address":
		f.status.IsAddress = true
		reply(http.StatusCreated, dto.AddressData{UserID: "42"})
	case "/v1/user/contact/code":
		f.codes++
		reply(http.StatusOK, dto.SendContactCodeData{ExpiresIn: 300})
	case "/v1/user/contact":
		f.status.IsContact = true
		reply(http.StatusCreated, dto.ContactData{UserID: "42", NumberMasked: "+92******4567", Verified: true})
	case "/v1/constant/currencies":
		reply(http.StatusOK, model.SeedCurrencies)
	case "/v1/constant/languages":
		reply(http.StatusOK, model.SeedLanguages)
	case "/v1/user/settings":
		f.status.IsSettings = true
		reply(http.StatusCreated, dto.SettingsData{UserID: "42"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func runWizard(t *testing.T, api *fakeAPI, input, start string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL, apiclient.WithTimeout(2*time.Second))
	require.NoError(t, err)

	var out bytes.Buffer
	w := newWizard(client, onboarding.DefaultRoutes(), "42", strings.NewReader(input), &out)
	session := onboarding.NewSession(
		"42",
		onboarding.NewRetryingSource(client, onboarding.RetryPolicy{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}),
		onboarding.NewNavigationEffect(onboarding.NewSequencer(onboarding.DefaultRoutes()), w),
	)
	defer session.Close()

	err = w.Run(context.Background(), session, start)
	return out.String(), err
}

func TestWizardWalksAllSteps(t *testing.T) {
	api := &fakeAPI{}
	input := strings.Join([]string{
		"ayesha", "Ayesha", "Khan", "Ayesha K", "ayesha@example.com",
		"1", "1", "12 Clifton Road",
		"+923001234567", "123456",
		"2", "1", "dark",
	}, "\n") + "\n"

	out, err := runWizard(t, api, input, "/")
	require.NoError(t, err)

	assert.Contains(t, out, "==> profile (/onboarding/profile)")
	assert.Contains(t, out, "==> address (/onboarding/address)")
	assert.Contains(t, out, "==> contact (/onboarding/contact)")
	assert.Contains(t, out, "==> settings (/onboarding/settings)")
	assert.Contains(t, out, "==> main-landing (/main/dashboard)")
	assert.Contains(t, out, "Onboarding complete")
	assert.Equal(t, dto.UserStatusData{IsUser: true, IsAddress: true, IsContact: true, IsSettings: true}, api.status)
	assert.Equal(t, 1, api.codes)
}

func TestWizardRepromptsAfterFailedSubmit(t *testing.T) {
	api := &fakeAPI{
		failProfile: true,
		status:      dto.UserStatusData{},
	}
	input := strings.Join([]string{
		"taken", "Ayesha", "Khan", "Ayesha K", "ayesha@example.com",
		"ayesha", "Ayesha", "Khan", "Ayesha K", "ayesha@example.com",
		"q",
	}, "\n") + "\n"

	out, err := runWizard(t, api, input, "/")
	assert.ErrorIs(t, err, errQuit)
	assert.Contains(t, out, "Submit failed")
	assert.Equal(t, 1, strings.Count(out, "==> profile"))
	assert.Contains(t, out, "==> address")
	assert.True(t, api.status.IsUser)
}

func TestWizardCompletedUserOutsideOnboarding(t *testing.T) {
	api := &fakeAPI{status: dto.UserStatusData{IsUser: true, IsAddress: true, IsContact: true, IsSettings: true}}

	out, err := runWizard(t, api, "", "/reports")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing left to do")
	assert.NotContains(t, out, "==>")
}

func TestWizardStopsOnEOF(t *testing.T) {
	out, err := runWizard(t, &fakeAPI{}, "ayesha\n", "/")
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out, "==> profile")
}

func TestWizardStartsOnPendingStep(t *testing.T) {
	api := &fakeAPI{status: dto.UserStatusData{IsUser: true}}
	input := strings.Join([]string{
		"1", "1", "12 Clifton Road",
		"q",
	}, "\n") + "\n"

	out, err := runWizard(t, api, input, "/onboarding/address")
	assert.ErrorIs(t, err, errQuit)
	assert.NotContains(t, out, "Nothing left to do")
	assert.NotContains(t, out, "==> address")
	assert.Contains(t, out, "==> contact (/onboarding/contact)")
	assert.True(t, api.status.IsAddress)
}
