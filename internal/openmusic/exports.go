package openmusic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	exportStreamName    = "EXPORTS"
	exportSubject       = "export.playlists"
	exportSubjectPrefix = "export.>"
)

// ExportPublisher queues a playlist export for the out-of-process worker.
// The API's obligation ends once the message is durably stored.
type ExportPublisher interface {
	PublishPlaylistExport(ctx context.Context, playlistID, targetEmail string) error
}

type exportRequest struct {
	PlaylistID  string `json:"playlistId"`
	TargetEmail string `json:"targetEmail"`
}

// NATSExporter publishes export requests to a JetStream stream so they
// survive broker restarts until the worker consumes them.
type NATSExporter struct {
	js jetstream.JetStream
}

func NewNATSExporter(ctx context.Context, nc *nats.Conn) (*NATSExporter, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     exportStreamName,
		Subjects: []string{exportSubjectPrefix},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure export stream: %w", err)
	}

	return &NATSExporter{js: js}, nil
}

func (e *NATSExporter) PublishPlaylistExport(ctx context.Context, playlistID, targetEmail string) error {
	msg, err := json.Marshal(exportRequest{
		PlaylistID:  playlistID,
		TargetEmail: targetEmail,
	})
	if err != nil {
		return err
	}
	_, err = e.js.Publish(ctx, exportSubject, msg)
	return err
}
