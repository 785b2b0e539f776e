package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"runanalyzer/internal/analysis"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return &DB{sqlDB}
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer db.Close()

	if err := db.SetSyncState("k", "v"); err != nil {
		t.Fatalf("SetSyncState() error = %v", err)
	}
	// A second query must see the same database
	if v, err := db.GetSyncState("k"); err != nil || v != "v" {
		t.Errorf("GetSyncState() = %q, %v, want v", v, err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := migrate(db.DB); err != nil {
		t.Errorf("second migrate() error = %v", err)
	}
}

func TestAuth(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth() on empty db error = %v, want ErrNoAuth", err)
	}
	if err := db.UpdateTokens("a", "r", time.Now()); !errors.Is(err, ErrNoAuth) {
		t.Errorf("UpdateTokens() without auth error = %v, want ErrNoAuth", err)
	}

	expires := time.Unix(1718000000, 0)
	err := db.SaveAuth(&Auth{
		AthleteID:    42,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expires,
		Scope:        "read,activity:read_all",
	})
	if err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}

	if err := db.UpdateTokens("access-2", "refresh-2", expires.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	got, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if got.AthleteID != 42 || got.AccessToken != "access-2" || got.RefreshToken != "refresh-2" {
		t.Errorf("GetAuth() = %+v", got)
	}
	if !got.ExpiresAt.Equal(expires.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires.Add(time.Hour))
	}
	if got.Scope != "read,activity:read_all" {
		t.Errorf("Scope = %q", got.Scope)
	}

	if err := db.DeleteAuth(); err != nil {
		t.Fatalf("DeleteAuth() error = %v", err)
	}
	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetAuth() after delete error = %v, want ErrNoAuth", err)
	}
}

func TestActivities(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	activities := []Activity{
		{ID: 1, Name: "Easy", Type: "Run", StartDate: base, StartDateLocal: base, Distance: 5000, MovingTime: 1500, ElapsedTime: 1600, AverageSpeed: 3.33},
		{ID: 2, Name: "Commute", Type: "Ride", StartDate: base.Add(24 * time.Hour), StartDateLocal: base.Add(24 * time.Hour), Distance: 12000, MovingTime: 2400, ElapsedTime: 2500},
		{ID: 3, Name: "Tempo", Type: "Run", StartDate: base.Add(48 * time.Hour), StartDateLocal: base.Add(48 * time.Hour), Distance: 8000, MovingTime: 2200, ElapsedTime: 2300, AverageHeartrate: floatPtr(158), HasHeartrate: true},
	}
	for i := range activities {
		if err := db.UpsertActivity(&activities[i]); err != nil {
			t.Fatalf("UpsertActivity(%d) error = %v", activities[i].ID, err)
		}
	}

	// Upsert updates in place
	activities[0].Name = "Easy Recovery"
	if err := db.UpsertActivity(&activities[0]); err != nil {
		t.Fatalf("UpsertActivity() update error = %v", err)
	}

	got, err := db.GetActivity(1)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if got.Name != "Easy Recovery" {
		t.Errorf("Name = %q, want Easy Recovery", got.Name)
	}
	if !got.StartDate.Equal(base) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, base)
	}
	if got.AverageHeartrate != nil {
		t.Errorf("AverageHeartrate = %v, want nil", *got.AverageHeartrate)
	}

	if _, err := db.GetActivity(99); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("GetActivity(99) error = %v, want ErrActivityNotFound", err)
	}

	runs, err := db.ListRuns(base, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != 3 || runs[1].ID != 1 {
		t.Errorf("runs order = %d,%d, want 3,1", runs[0].ID, runs[1].ID)
	}
	if runs[0].AverageHeartrate == nil || *runs[0].AverageHeartrate != 158 {
		t.Errorf("runs[0].AverageHeartrate = %v, want 158", runs[0].AverageHeartrate)
	}

	recent, err := db.ListRuns(base.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("len(recent) = %d, want 1", len(recent))
	}

	latest, err := db.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if latest.ID != 3 {
		t.Errorf("LatestRun().ID = %d, want 3", latest.ID)
	}
}

func TestStreamBundles(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetStreamBundle(5); !errors.Is(err, ErrStreamsNotFound) {
		t.Fatalf("GetStreamBundle() error = %v, want ErrStreamsNotFound", err)
	}

	bundle := analysis.StreamBundle{
		analysis.StreamTime:      analysis.NewStream([]float64{0, 1, 2}),
		analysis.StreamVelocity:  analysis.NewStream([]float64{3, 3, 1}),
		analysis.StreamHeartrate: &analysis.Stream{Data: []any{140.0, nil, "bad"}},
	}
	if err := db.SaveStreamBundle(5, bundle); err != nil {
		t.Fatalf("SaveStreamBundle() error = %v", err)
	}

	has, err := db.HasStreamBundle(5)
	if err != nil || !has {
		t.Errorf("HasStreamBundle() = %v, %v, want true", has, err)
	}

	got, err := db.GetStreamBundle(5)
	if err != nil {
		t.Fatalf("GetStreamBundle() error = %v", err)
	}
	if got.Len() != 3 {
		t.Errorf("Len() = %d, want 3", got.Len())
	}
	hr := got.Data(analysis.StreamHeartrate)
	if hr[1] != nil || hr[2] != "bad" {
		t.Errorf("heartrate = %v, want raw values preserved", hr)
	}

	// Cached bundles analyze the same as the original
	before := analysis.Analyze(bundle)
	after := analysis.Analyze(got)
	if before.Insights.WalkCount != after.Insights.WalkCount || len(before.Segments) != len(after.Segments) {
		t.Error("analysis of cached bundle differs from the original")
	}

	if err := db.DeleteStreamBundle(5); err != nil {
		t.Fatalf("DeleteStreamBundle() error = %v", err)
	}
	if has, _ := db.HasStreamBundle(5); has {
		t.Error("HasStreamBundle() = true after delete")
	}
}

func TestAnalysisRuns(t *testing.T) {
	db := setupTestDB(t)

	id := int64(7)
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	runs := []AnalysisRun{
		{RunID: "a", ActivityID: &id, Source: "strava", SampleCount: 100, WalkCount: 2, AvgPace: floatPtr(5.5), AnalyzedAt: base},
		{RunID: "b", ActivityID: &id, Source: "strava", SampleCount: 100, WalkCount: 3, AvgPace: floatPtr(5.4), AnalyzedAt: base.Add(500 * time.Millisecond)},
		{RunID: "c", Source: "run.fit", SampleCount: 0, Error: "No stream data available for analysis.", AnalyzedAt: base.Add(time.Second)},
	}
	for i := range runs {
		if err := db.RecordAnalysisRun(&runs[i]); err != nil {
			t.Fatalf("RecordAnalysisRun(%s) error = %v", runs[i].RunID, err)
		}
	}

	latest, err := db.LatestAnalysisRun(7)
	if err != nil {
		t.Fatalf("LatestAnalysisRun() error = %v", err)
	}
	if latest == nil || latest.RunID != "b" {
		t.Fatalf("LatestAnalysisRun() = %+v, want run b", latest)
	}
	if latest.WalkCount != 3 || latest.AvgHeartrate != nil {
		t.Errorf("LatestAnalysisRun() = %+v", latest)
	}

	none, err := db.LatestAnalysisRun(8)
	if err != nil || none != nil {
		t.Errorf("LatestAnalysisRun(8) = %v, %v, want nil, nil", none, err)
	}

	all, err := db.ListAnalysisRuns(10)
	if err != nil {
		t.Fatalf("ListAnalysisRuns() error = %v", err)
	}
	if len(all) != 3 || all[0].RunID != "c" {
		t.Fatalf("ListAnalysisRuns() = %+v", all)
	}
	if all[0].ActivityID != nil {
		t.Errorf("offline run ActivityID = %v, want nil", *all[0].ActivityID)
	}
}

func TestAnalysisRuns_SameTimestamp(t *testing.T) {
	db := setupTestDB(t)

	id := int64(9)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	// Inserted in this order; "z" sorts after "a" only by insertion
	for _, runID := range []string{"z-first", "a-second"} {
		run := AnalysisRun{RunID: runID, ActivityID: &id, Source: "strava", AnalyzedAt: at}
		if err := db.RecordAnalysisRun(&run); err != nil {
			t.Fatalf("RecordAnalysisRun(%s) error = %v", runID, err)
		}
	}

	latest, err := db.LatestAnalysisRun(id)
	if err != nil || latest == nil || latest.RunID != "a-second" {
		t.Fatalf("LatestAnalysisRun() = %+v, %v, want a-second", latest, err)
	}

	all, err := db.ListAnalysisRuns(10)
	if err != nil {
		t.Fatalf("ListAnalysisRuns() error = %v", err)
	}
	if len(all) != 2 || all[0].RunID != "a-second" || all[1].RunID != "z-first" {
		t.Errorf("ListAnalysisRuns() order = %+v, want a-second, z-first", all)
	}
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	last, err := db.LastRunsFetch()
	if err != nil || !last.IsZero() {
		t.Fatalf("LastRunsFetch() = %v, %v, want zero time", last, err)
	}

	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	if err := db.SetLastRunsFetch(now); err != nil {
		t.Fatalf("SetLastRunsFetch() error = %v", err)
	}
	last, err = db.LastRunsFetch()
	if err != nil {
		t.Fatalf("LastRunsFetch() error = %v", err)
	}
	if !last.Equal(now) {
		t.Errorf("LastRunsFetch() = %v, want %v", last, now)
	}
}
