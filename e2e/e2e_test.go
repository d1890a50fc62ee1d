//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"maisafe-go/internal/config"
	"maisafe-go/internal/db"
	frienddomain "maisafe-go/internal/domain/friend"
	meddomain "maisafe-go/internal/domain/medication"
	syncdomain "maisafe-go/internal/domain/sync"
	userdomain "maisafe-go/internal/domain/user"
	cleanuprepo "maisafe-go/internal/repository/postgres/cleanup"
	friendrepo "maisafe-go/internal/repository/postgres/friend"
	medrepo "maisafe-go/internal/repository/postgres/medication"
	syncrepo "maisafe-go/internal/repository/postgres/sync"
	userrepo "maisafe-go/internal/repository/postgres/user"
	"maisafe-go/internal/transport/httpserver"
	"maisafe-go/internal/transport/httpserver/handler"
	authmw "maisafe-go/internal/transport/httpserver/middleware"
	"maisafe-go/pkg/logger"

	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

type account struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, slog.LevelError, "text")
	cfg := config.Config{
		DB:          config.DBConfig{DSN: dsn},
		Invitations: config.InvitationConfig{CodeTTL: 180 * time.Second},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, table := range []string{"intake_history", "medications", "invitation_codes", "friend_relations", "users"} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn), 0)
	friends := frienddomain.NewService(friendrepo.NewPostgres(dbConn), users, cfg.Invitations.CodeTTL)
	medications := meddomain.NewService(medrepo.NewPostgres(dbConn), friends)
	syncService := syncdomain.NewService(syncrepo.NewPostgres(dbConn))

	handlers := handler.New(log, users, friends, medications, syncService)
	router := httpserver.NewRouter(cfg, handlers, authmw.NewBasicAuth(users))

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		if sqlDB, err := dbConn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{server: server, db: dbConn}
}

func (env *testEnv) request(t *testing.T, method, path string, auth *account, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		req.SetBasicAuth(auth.UUID, auth.Password)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func (env *testEnv) register(t *testing.T, username string) account {
	t.Helper()

	resp, raw := env.request(t, http.MethodPost, "/auth/register", nil, map[string]string{"username": username})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, resp.StatusCode, raw)
	}

	var acc account
	if err := json.Unmarshal(raw, &acc); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return acc
}

func TestRegisterLinkSyncFlow(t *testing.T) {
	env := setupE2E(t)

	patient := env.register(t, "alice")
	friend := env.register(t, "bob")

	// Unlinked friend has no patient to read.
	resp, _ := env.request(t, http.MethodGet, "/medicines/get_medications_for_current_friend", &friend, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before linking, got %d", resp.StatusCode)
	}

	resp, raw := env.request(t, http.MethodPost, "/friends/invitation", &friend, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create invitation: status %d body %s", resp.StatusCode, raw)
	}
	var invitation struct {
		Code             string `json:"code"`
		ExpiresInSeconds int    `json:"expires_in_seconds"`
	}
	if err := json.Unmarshal(raw, &invitation); err != nil {
		t.Fatalf("decode invitation: %v", err)
	}
	if len(invitation.Code) != 6 || invitation.ExpiresInSeconds != 180 {
		t.Fatalf("unexpected invitation %+v", invitation)
	}

	resp, raw = env.request(t, http.MethodPost, "/friends/add", &patient, map[string]string{"code": invitation.Code})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("redeem: status %d body %s", resp.StatusCode, raw)
	}

	// Second redeem of the same code must conflict.
	resp, _ = env.request(t, http.MethodPost, "/friends/add", &patient, map[string]string{"code": invitation.Code})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on reused code, got %d", resp.StatusCode)
	}

	resp, raw = env.request(t, http.MethodPost, "/sync/push", &patient, map[string]interface{}{
		"medications": []map[string]interface{}{{
			"client_id":     1,
			"action":        "create",
			"name":          "Aspirin",
			"form":          "tablet",
			"start_date":    "2024-01-01",
			"schedule_type": "daily",
			"times_per_day": []string{"08:00"},
		}},
		"intake_history": []map[string]interface{}{},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("push: status %d body %s", resp.StatusCode, raw)
	}
	var pushResult struct {
		Medications []struct {
			ClientID int   `json:"client_id"`
			ServerID int64 `json:"server_id"`
		} `json:"medications"`
	}
	if err := json.Unmarshal(raw, &pushResult); err != nil {
		t.Fatalf("decode push result: %v", err)
	}
	if len(pushResult.Medications) != 1 || pushResult.Medications[0].ClientID != 1 || pushResult.Medications[0].ServerID == 0 {
		t.Fatalf("unexpected push result %s", raw)
	}

	resp, raw = env.request(t, http.MethodGet, "/sync/pull", &patient, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pull: status %d body %s", resp.StatusCode, raw)
	}
	var pullResult struct {
		Medications []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"medications"`
	}
	if err := json.Unmarshal(raw, &pullResult); err != nil {
		t.Fatalf("decode pull result: %v", err)
	}
	if len(pullResult.Medications) != 1 || pullResult.Medications[0].Name != "Aspirin" {
		t.Fatalf("unexpected pull result %s", raw)
	}

	// Linked friend now reads the patient's medications.
	resp, raw = env.request(t, http.MethodGet, "/medicines/get_medications_for_current_friend", &friend, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("friend list: status %d body %s", resp.StatusCode, raw)
	}
	var friendView []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &friendView); err != nil {
		t.Fatalf("decode friend view: %v", err)
	}
	if len(friendView) != 1 || friendView[0].Name != "Aspirin" {
		t.Fatalf("unexpected friend view %s", raw)
	}
}

func TestSweepPurgesStaleRows(t *testing.T) {
	env := setupE2E(t)

	friend := env.register(t, "dave")
	patient := env.register(t, "erin")

	now := time.Now().UTC()
	codes := []frienddomain.InvitationCode{
		{ID: "code-used", Code: "111111", MedFriendID: friend.UUID, ExpiresAt: now.Add(time.Hour), Used: true},
		{ID: "code-expired", Code: "222222", MedFriendID: friend.UUID, ExpiresAt: now.Add(-time.Hour)},
		{ID: "code-live", Code: "333333", MedFriendID: friend.UUID, ExpiresAt: now.Add(time.Hour)},
	}
	for i := range codes {
		if err := env.db.Create(&codes[i]).Error; err != nil {
			t.Fatalf("seed invitation code: %v", err)
		}
	}

	stale := meddomain.Medication{
		PatientID:    patient.UUID,
		Name:         "Old Drops",
		Form:         meddomain.FormDrop,
		StartDate:    now.AddDate(0, -6, 0),
		ScheduleType: meddomain.ScheduleDaily,
		TimesPerDay:  []string{"08:00"},
	}
	fresh := meddomain.Medication{
		PatientID:    patient.UUID,
		Name:         "Aspirin",
		Form:         meddomain.FormTablet,
		StartDate:    now,
		ScheduleType: meddomain.ScheduleDaily,
		TimesPerDay:  []string{"08:00"},
	}
	for _, m := range []*meddomain.Medication{&stale, &fresh} {
		if err := env.db.Create(m).Error; err != nil {
			t.Fatalf("seed medication: %v", err)
		}
	}
	staleIntake := meddomain.IntakeHistory{
		MedicationID:  stale.ID,
		ScheduledTime: now.AddDate(0, -6, 0),
		TakenTime:     now.AddDate(0, -6, 0),
		Status:        meddomain.StatusTaken,
	}
	if err := env.db.Create(&staleIntake).Error; err != nil {
		t.Fatalf("seed intake: %v", err)
	}

	retention := 60 * 24 * time.Hour
	cutoff := now.Add(-retention - time.Hour)
	if err := env.db.Exec("UPDATE medications SET updated_at = ? WHERE id = ?", cutoff, stale.ID).Error; err != nil {
		t.Fatalf("age medication: %v", err)
	}
	if err := env.db.Exec("UPDATE intake_history SET updated_at = ? WHERE id = ?", cutoff, staleIntake.ID).Error; err != nil {
		t.Fatalf("age intake: %v", err)
	}

	result, err := cleanuprepo.NewPostgres(env.db).Sweep(context.Background(), now, retention)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.CodesDeleted != 2 {
		t.Fatalf("expected 2 codes deleted, got %d", result.CodesDeleted)
	}
	if result.MedicationsDeleted != 1 {
		t.Fatalf("expected 1 medication deleted, got %d", result.MedicationsDeleted)
	}

	var liveCodes int64
	if err := env.db.Model(&frienddomain.InvitationCode{}).Count(&liveCodes).Error; err != nil {
		t.Fatalf("count codes: %v", err)
	}
	if liveCodes != 1 {
		t.Fatalf("expected only the live code to survive, got %d", liveCodes)
	}

	var medications int64
	if err := env.db.Model(&meddomain.Medication{}).Count(&medications).Error; err != nil {
		t.Fatalf("count medications: %v", err)
	}
	if medications != 1 {
		t.Fatalf("expected only the fresh medication to survive, got %d", medications)
	}

	var intakes int64
	if err := env.db.Model(&meddomain.IntakeHistory{}).Count(&intakes).Error; err != nil {
		t.Fatalf("count intakes: %v", err)
	}
	if intakes != 0 {
		t.Fatalf("expected stale intake to be purged, got %d", intakes)
	}
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	env := setupE2E(t)

	acc := env.register(t, "carol")
	bad := acc
	bad.Password = "wrong"

	resp, _ := env.request(t, http.MethodGet, "/sync/pull", &bad, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad credential, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodGet, "/sync/pull", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", resp.StatusCode)
	}
}
