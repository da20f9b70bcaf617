package storage

import (
	"context"
	"testing"
	"time"

	"github.com/backsoul/citizenquiz/pkg/models"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, "file:"+t.TempDir()+"/results.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordIsOncePerPass(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	r := models.ArchivedResult{
		SessionID: "s1", Pass: 1, GameID: "phishing", PlayerName: "ana",
		Score: 3, Total: 5, Passed: false, Coins: 15, CompletedAt: now,
	}
	if err := store.Record(ctx, r); err != nil {
		t.Fatalf("record: %v", err)
	}
	r.Score = 5
	if err := store.Record(ctx, r); err != nil {
		t.Fatalf("record duplicate: %v", err)
	}

	r.Pass = 2
	r.Score, r.Passed, r.Coins = 5, true, 25
	r.CompletedAt = now.Add(time.Minute)
	if err := store.Record(ctx, r); err != nil {
		t.Fatalf("record second pass: %v", err)
	}

	history, err := store.PlayerHistory(ctx, "ana", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if history[0].Pass != 2 || !history[0].Passed || history[0].Coins != 25 {
		t.Fatalf("latest = %+v", history[0])
	}
	if history[1].Score != 3 {
		t.Fatalf("first pass score = %d, duplicate overwrote it", history[1].Score)
	}
	if !history[1].CompletedAt.Equal(now) {
		t.Fatalf("completed at = %v, want %v", history[1].CompletedAt, now)
	}
}

func TestLeaderboardKeepsBestPerPlayer(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	results := []models.ArchivedResult{
		{SessionID: "a1", Pass: 1, GameID: "g1", PlayerName: "ana", Score: 2, Total: 5, Coins: 10},
		{SessionID: "a2", Pass: 1, GameID: "g2", PlayerName: "ana", Score: 5, Total: 5, Coins: 30},
		{SessionID: "b1", Pass: 1, GameID: "g1", PlayerName: "beto", Score: 4, Total: 5, Coins: 20},
		{SessionID: "c1", Pass: 1, GameID: "g1", PlayerName: "caro", Score: 5, Total: 5, Coins: 20},
	}
	for _, r := range results {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("record %s: %v", r.SessionID, err)
		}
	}

	board, err := store.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"ana", "caro", "beto"}
	if len(board) != len(want) {
		t.Fatalf("leaderboard len = %d, want %d", len(board), len(want))
	}
	for i, name := range want {
		if board[i].PlayerName != name || board[i].Position != i+1 {
			t.Fatalf("position %d = %+v, want %s", i+1, board[i], name)
		}
	}
	if board[0].Coins != 30 || board[0].GameID != "g2" {
		t.Fatalf("ana best = %+v", board[0])
	}

	n, err := store.CountPlayers(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count players = %d, %v", n, err)
	}

	top, _ := store.Leaderboard(ctx, 1)
	if len(top) != 1 {
		t.Fatalf("limited leaderboard len = %d", len(top))
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("mysql"), ""); err == nil {
		t.Fatal("expected error")
	}
}
