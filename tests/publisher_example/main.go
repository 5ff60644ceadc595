package main

import (
	"context"
	"fmt"
	"os"

	"github.com/osvaldoandrade/movectl/pkg/publisher"
)

// Publishes the package at MOVECTL_PACKAGE to testnet, capturing the
// coin-flip HouseCap, then prints the recorded state and history.
func main() {
	pkg := os.Getenv("MOVECTL_PACKAGE")
	secret := os.Getenv("MOVECTL_SECRET_KEY")
	if pkg == "" || secret == "" {
		fmt.Fprintln(os.Stderr, "MOVECTL_PACKAGE and MOVECTL_SECRET_KEY are required")
		os.Exit(1)
	}

	cfg := publisher.DefaultConfig("testnet")
	cfg.SecretKey = secret
	cfg.JournalPath = ".movectl/journal.db"

	ctx := context.Background()
	client, err := publisher.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	result, err := client.Publish(ctx, pkg, publisher.PublishOptions{
		ResultParser: publisher.CaptureByType(map[string]string{"houseCapId": "house_data::HouseCap"}),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "publish: %v\n", err)
		return
	}
	fmt.Printf("published package=%s upgrade_cap=%s digest=%s\n", result.PackageID, result.UpgradeCapID, result.Digest)
	for _, created := range result.Created {
		fmt.Printf("created %s %s owner=%s\n", created.ObjectID, created.Type, created.Owner)
	}

	state, err := client.State(ctx, pkg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "state: %v\n", err)
		return
	}
	fmt.Printf("state houseCapId=%v\n", state["houseCapId"])

	entries, err := client.History(ctx, publisher.HistoryQuery{PackagePath: pkg, Limit: 5})
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	for _, entry := range entries {
		fmt.Printf("journal %s %s %s %s\n", entry.RecordedAt.Format("2006-01-02T15:04:05Z07:00"), entry.Kind, entry.Status, entry.PackageID)
	}
}
