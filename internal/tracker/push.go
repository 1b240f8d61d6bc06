package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type carbonPayload struct {
	Key         string `json:"key"`
	ServerCount int    `json:"servercount"`
}

type shardStatsPayload struct {
	ShardID     int `json:"shard_id"`
	ShardCount  int `json:"shard_count"`
	ServerCount int `json:"server_count"`
}

type heartbeatPayload struct {
	Value int `json:"value"`
}

// push sends a guild count to a count destination.
func (r *Reporter) push(ctx context.Context, d Destination, guilds int) error {
	switch d.Kind {
	case KindGuildCount:
		r.logger.Printf("[DEBUG] Updating %s: %s is on %d servers", d.Name, r.username(), guilds)
		return r.post(ctx, d, nil, carbonPayload{Key: d.Token, ServerCount: guilds})
	case KindShardStats:
		r.logger.Printf("[DEBUG] Updating %s: shard %d/%d is on %d servers", d.Name, r.shard.ID, r.shard.Count, guilds)
		return r.post(ctx, d, map[string]string{"Authorization": d.Token}, shardStatsPayload{
			ShardID:     r.shard.ID,
			ShardCount:  r.shard.Count,
			ServerCount: guilds,
		})
	default:
		return fmt.Errorf("%s is not a guild count destination", d.Name)
	}
}

func (r *Reporter) postHeartbeat(ctx context.Context, d Destination) error {
	return r.post(ctx, d, map[string]string{"X-Cachet-Token": d.Token}, heartbeatPayload{Value: 1})
}

func (r *Reporter) post(ctx context.Context, d Destination, headers map[string]string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Destination: d.Name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(data))
	if err != nil {
		return &TransportError{Destination: d.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &TransportError{Destination: d.Name, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			Destination: d.Name,
			Code:        resp.StatusCode,
			Err:         fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	r.logger.Printf("[DEBUG] %s responded %d: %s", d.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	return nil
}

func (r *Reporter) username() string {
	if r.src == nil {
		return "bot"
	}
	if name := r.src.Username(); name != "" {
		return name
	}
	return "bot"
}
