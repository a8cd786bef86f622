package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"

	"github.com/ArtoLord/enoa-sign-roller/config"
	"github.com/ArtoLord/enoa-sign-roller/discord"
	"github.com/ArtoLord/enoa-sign-roller/gateway"
	"github.com/ArtoLord/enoa-sign-roller/models"
	"github.com/ArtoLord/enoa-sign-roller/routes"
	"github.com/ArtoLord/enoa-sign-roller/signs"
	"github.com/ArtoLord/enoa-sign-roller/store"
	"github.com/ArtoLord/enoa-sign-roller/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	catalog, err := signs.LoadCatalog(cfg.SignPackPath)
	if err != nil {
		utils.Sugar.Fatalf("cannot load sign pack: %v", err)
	}
	utils.Sugar.Infof("loaded %d signs from %s", catalog.Len(), cfg.SignPackPath)

	db := config.InitDatabase(&models.User{}, &models.GuildSign{})

	st := store.NewGormStore(db)
	engine := signs.NewEngine(catalog)
	rest := discord.NewRestClient(cfg.DiscordToken, cfg.DiscordAppID, utils.Sugar)
	router := discord.NewRouter(st, engine, catalog, rest, utils.Sugar)

	if cfg.Transport == config.TransportGateway {
		utils.Sugar.Info("starting gateway transport")
		client := gateway.NewClient(cfg.DiscordToken, router, rest, utils.Sugar)
		if err := client.Run(context.Background()); err != nil {
			utils.Sugar.Fatalf("gateway stopped with error: %v", err)
		}
		return
	}

	publicKey, err := hex.DecodeString(cfg.DiscordPublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		utils.Sugar.Fatal("DISCORD_PUBLIC_KEY is not a valid hex-encoded Ed25519 key")
	}

	r := routes.SetupRouter(ed25519.PublicKey(publicKey), router, rest)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.RunServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
