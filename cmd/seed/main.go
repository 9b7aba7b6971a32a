package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"credential-lease-platform/internal/config"
	"credential-lease-platform/internal/domain/model"
	red "credential-lease-platform/internal/infra/redis"
	"credential-lease-platform/internal/usecase"

	"github.com/rs/zerolog"
)

const demoSuffix = "DEMO2026"

// Seeds a demo slot, a couple of pool credentials and one multi-use
// redemption code so the claim flow can be exercised end to end.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer client.Close()

	// If the demo code is already in the store, do nothing.
	seeded, err := client.Exists(ctx, "code:"+model.CodePrefix+demoSuffix)
	if err != nil {
		log.Fatalf("check existing seed: %v", err)
	}
	if seeded {
		fmt.Println("demo data already present. No changes.")
		return
	}

	// Slots and credentials are normally written by the administrative
	// collaborator; the seeder stands in for it here.
	slot := &model.Slot{
		ID:            "premium",
		Name:          "Premium",
		Platform:      "StreamFlix",
		Enabled:       true,
		LeaseDuration: "6",
	}
	mustSet(ctx, client, "slot:"+slot.ID, slot)
	fmt.Printf("seeded slot %s (%s)\n", slot.ID, slot.Platform)

	creds := []*model.Credential{
		{
			ID:      "cred:alpha",
			SlotIDs: []string{"premium"},
			Payload: model.Payload{
				model.PayloadLogin:    "alpha@example.com",
				model.PayloadPassword: "alpha-password",
			},
		},
		{
			ID:        "cred:fallback",
			SlotIDs:   []string{model.Wildcard},
			MaxUsage:  20,
			Payload:   model.Payload{model.PayloadLogin: "shared@example.com"},
			Platforms: nil,
		},
	}
	for _, c := range creds {
		mustSet(ctx, client, c.ID, c)
		fmt.Printf("seeded credential %s\n", c.ID)
	}

	logger := zerolog.Nop()
	adminUC := usecase.NewAdminUseCase(
		red.NewCodeRepo(client),
		red.NewSlotRepo(client),
		red.NewLeaseRepo(client),
		&logger,
	)
	code, err := adminUC.CreateCode(ctx, slot.ID, "seed", demoSuffix, 5, nil)
	if err != nil {
		log.Fatalf("create demo code: %v", err)
	}
	fmt.Printf("seeded code %s (max uses %d)\n", code.Code, code.MaxUses)
}

func mustSet(ctx context.Context, client red.Client, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("marshal %s: %v", key, err)
	}
	if err := client.Set(ctx, key, data, 0); err != nil {
		log.Fatalf("write %s: %v", key, err)
	}
}
