package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Senpai-Sama7/Astro-sub000/internal/cliconfig"
	"github.com/Senpai-Sama7/Astro-sub000/internal/config"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/gate"
	"github.com/Senpai-Sama7/Astro-sub000/internal/ledger"
	"github.com/Senpai-Sama7/Astro-sub000/internal/policy"
	"github.com/Senpai-Sama7/Astro-sub000/internal/risk"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
	"github.com/Senpai-Sama7/Astro-sub000/internal/store"
	"github.com/Senpai-Sama7/Astro-sub000/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the gateway server to connect to.
	RemoteAddr string
}

func NewFactory() *Factory {
	return &Factory{}
}

// GetClient returns an authenticated HTTP client for remote operations.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(ServerAddrKey) // prio 2: config/env
	}
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set ASTROGATE_ADDR)")
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		}
	}

	if envToken := os.Getenv("ASTROGATE_TOKEN"); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

func (f *Factory) LoadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("gateway config file not specified (use --config)")
	}
	return config.Load(cfgFile)
}

// GetLocalGateway wires a full in-process gateway from the config file,
// for local commands that work without a running server.
func (f *Factory) GetLocalGateway() (*service.Gateway, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gateway config: %w", err)
	}
	return buildGateway(cfg)
}

// buildGateway assembles the decision pipeline shared by the serve
// command and local CLI operations.
func buildGateway(cfg *config.Config) (*service.Gateway, error) {
	policies := policy.NewStore()
	for _, r := range cfg.Roles {
		policies.RegisterRolePolicy(r.Role, r.Capabilities)
	}
	for _, a := range cfg.Actions {
		if err := policies.RegisterActionPolicy(a.Core()); err != nil {
			return nil, fmt.Errorf("registering action '%s': %w", a.Action, err)
		}
	}

	signer, err := ledger.NewSigner(
		ledger.Key{ID: cfg.Signing.Active.ID, Secret: []byte(cfg.Signing.Active.Secret)},
		retiredKeys(cfg.Signing.Retired)...,
	)
	if err != nil {
		return nil, fmt.Errorf("building ledger signer: %w", err)
	}

	var archive core.ArchiveStore
	switch cfg.Ledger.Archive {
	case "file":
		archive, err = ledger.NewFileArchive(cfg.Ledger.Path)
	case "sqlite":
		archive, err = ledger.OpenSQLiteArchive(cfg.Ledger.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger archive: %w", err)
	}

	led, err := ledger.New(signer, policies, ledger.Options{
		Capacity:     cfg.Ledger.Capacity,
		Archive:      archive,
		NotifyBuffer: cfg.Ledger.NotifyBuffer,
	})
	if err != nil {
		return nil, fmt.Errorf("building audit ledger: %w", err)
	}

	approvals := store.NewInMemoryApprovalStore()
	actors := store.NewActorDirectory()
	limiter := gate.NewLimiter(gate.DefaultWindow)
	g := gate.New(policies, risk.New(risk.DefaultWeights()), approvals, limiter)

	failureMode := service.FailClosed
	if cfg.Ledger.OnFailure == "open" {
		failureMode = service.FailOpen
	}

	return service.NewGateway(policies, g, led, approvals, actors, service.Options{
		ApprovalTTL:  cfg.Approvals.TTL,
		AuditFailure: failureMode,
	}), nil
}

func retiredKeys(keys []config.SigningKey) []ledger.Key {
	out := make([]ledger.Key, len(keys))
	for i, k := range keys {
		out[i] = ledger.Key{ID: k.ID, Secret: []byte(k.Secret)}
	}
	return out
}
