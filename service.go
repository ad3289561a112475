package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"ewintr.nl/tubemirror/handler"
	"ewintr.nl/tubemirror/model"
	"ewintr.nl/tubemirror/resolver"
	"ewintr.nl/tubemirror/storage"
	"ewintr.nl/tubemirror/syncer"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func main() {

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	postgres, err := storage.NewPostgres(storage.PostgresInfo{
		Host:     getParam("POSTGRES_HOST", "localhost"),
		Port:     getParam("POSTGRES_PORT", "5432"),
		User:     getParam("POSTGRES_USER", "tubemirror"),
		Password: getParam("POSTGRES_PASSWORD", "tubemirror"),
		Database: getParam("POSTGRES_DB", "tubemirror"),
	})
	if err != nil {
		logger.Error("unable to connect to postgres", err)
		os.Exit(1)
	}
	playlistRepo := storage.NewPostgresPlaylistRepository(postgres)
	videoRepo := storage.NewPostgresVideoRepository(postgres)

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(getParam("YOUTUBE_API_KEY", "")))
	if err != nil {
		logger.Error("unable to create youtube service", err)
		os.Exit(1)
	}
	catalog := syncer.NewYoutube(ytClient)

	syncInterval, err := time.ParseDuration(getParam("SYNC_INTERVAL", "2h"))
	if err != nil {
		logger.Error("unable to parse sync interval", err)
		os.Exit(1)
	}

	channelID := model.YoutubeChannelID(getParam("YOUTUBE_CHANNEL_ID", ""))
	sync := syncer.NewSyncer(channelID, catalog, playlistRepo, videoRepo, logger)
	scheduler := syncer.NewScheduler(sync, syncInterval, logger)
	scheduler.Start()

	links := resolver.NewYoutubeResolver()

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", err)
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), handler.NewServer(playlistRepo, videoRepo, links, sync, logger))
	logger.Info("http server started")

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	scheduler.Stop()
	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
