package gameapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
)

const APIVersion = "1.0"

const (
	// MaxRetries bounds reconnect attempts for transport failures.
	// Semantic errors never retry.
	MaxRetries     = 3
	retryDelay     = 500 * time.Millisecond
	connectTimeout = 10 * time.Second
	recvTimeout    = 2 * time.Second
	recvChunkSize  = 32 * 1024
)

// Client speaks the request/response RPC. It holds no connection state, so a
// single Client is safe for any number of concurrent callers.
type Client struct {
	addr string
	lang Language
}

func NewClient(host string, port int, lang Language) *Client {
	return &Client{addr: fmt.Sprintf("%s:%d", host, port), lang: lang}
}

// Language returns the localization this client speaks.
func (c *Client) Language() Language { return c.lang }

type request struct {
	APIVersion string `json:"apiVersion"`
	RequestID  string `json:"requestId"`
	Command    string `json:"command"`
	Params     any    `json:"params"`
	Language   string `json:"language"`
}

type responseError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type envelope struct {
	RequestID string          `json:"requestId"`
	Status    int             `json:"status"`
	Data      json.RawMessage `json:"data"`
	Error     *responseError  `json:"error"`
}

// Send issues one command and returns the response data. Transport failures
// retry up to MaxRetries with a fixed backoff; *GameError and *ProtocolError
// surface immediately.
func (c *Client) Send(ctx context.Context, command string, params any) (json.RawMessage, error) {
	req := request{
		APIVersion: APIVersion,
		RequestID:  uuid.NewString(),
		Command:    command,
		Params:     params,
		Language:   c.lang.code,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &TransportError{Op: "retry", Err: ctx.Err()}
			case <-time.After(retryDelay):
			}
		}

		data, err := c.roundTrip(ctx, payload)
		if err == nil {
			return c.decode(data, req.RequestID, command)
		}
		lastErr = err
		slog.Debug("rpc attempt failed", "command", command, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

// roundTrip performs one connection's worth of work: dial, write, read to EOF
// or idle timeout. The deadline resets on every chunk so a slow but live
// server is not cut off mid-response.
func (c *Client) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	d := net.Dialer{Timeout: connectTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return nil, &TransportError{Op: "send", Err: err}
	}

	var data []byte
	buf := make([]byte, recvChunkSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(recvTimeout)); err != nil {
			return nil, &TransportError{Op: "deadline", Err: err}
		}
		n, err := conn.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// Server keeps the socket open after some responses; a quiet
				// line with data in hand means the response is complete.
				if len(data) > 0 {
					break
				}
				return nil, &TransportError{Op: "recv", Err: err}
			}
			return nil, &TransportError{Op: "recv", Err: err}
		}
	}
	if len(data) == 0 {
		return nil, &TransportError{Op: "recv", Err: fmt.Errorf("empty response")}
	}
	return data, nil
}

func (c *Client) decode(data []byte, requestID, command string) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("invalid JSON response to %s: %v", command, err)}
	}
	if env.RequestID != requestID {
		// Recoverable: the payload is still the answer to the only request on
		// this connection.
		slog.Warn("requestId mismatch", "command", command, "want", requestID, "got", env.RequestID)
	}
	if env.Status < 0 {
		ge := &GameError{Code: "UNKNOWN_ERROR", Message: "unknown error"}
		if env.Error != nil {
			ge.Code = env.Error.Code
			ge.Message = env.Error.Message
			ge.Details = env.Error.Details
		}
		return nil, ge
	}
	return env.Data, nil
}

// --- verbs ---

// Ping checks that the server answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Send(ctx, "ping", map[string]any{})
	return err
}

type rawActor struct {
	ID       int       `json:"id"`
	Type     string    `json:"type"`
	Faction  string    `json:"faction"`
	Position *Location `json:"position"`
	HP       int       `json:"hp"`
	MaxHP    int       `json:"maxHp"`
	IsFrozen bool      `json:"isFrozen"`
	IsDead   bool      `json:"isDead"`
}

func (c *Client) convertActor(r rawActor, frozen bool) Actor {
	return Actor{
		ID:       r.ID,
		Type:     c.lang.CodeFor(r.Type),
		Faction:  r.Faction,
		Position: r.Position,
		HP:       r.HP,
		MaxHP:    r.MaxHP,
		Frozen:   frozen || r.IsFrozen,
		Dead:     r.IsDead,
	}
}

// QueryActors runs query_actor. Frozen (fog ghost) actors are appended and
// marked when includeFrozen is set; own-unit callers leave it off because the
// engine reports own frozen actors as ghosts.
func (c *Client) QueryActors(ctx context.Context, q TargetsQuery, includeFrozen bool) ([]Actor, error) {
	data, err := c.Send(ctx, "query_actor", map[string]any{"targets": q.params(c.lang)})
	if err != nil {
		return nil, err
	}
	var body struct {
		Actors       []rawActor `json:"actors"`
		FrozenActors []rawActor `json:"frozenActors"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("invalid actor data: %v", err)}
	}
	actors := make([]Actor, 0, len(body.Actors)+len(body.FrozenActors))
	for _, r := range body.Actors {
		actors = append(actors, c.convertActor(r, false))
	}
	if includeFrozen {
		for _, r := range body.FrozenActors {
			actors = append(actors, c.convertActor(r, true))
		}
	}
	return actors, nil
}

// MapQuery fetches the full map grids.
func (c *Client) MapQuery(ctx context.Context) (*MapQueryResult, error) {
	data, err := c.Send(ctx, "map_query", map[string]any{})
	if err != nil {
		return nil, err
	}
	var m MapQueryResult
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("invalid map data: %v", err)}
	}
	return &m, nil
}

// PlayerBaseInfo fetches cash/resource/power figures.
func (c *Client) PlayerBaseInfo(ctx context.Context) (*PlayerBaseInfo, error) {
	data, err := c.Send(ctx, "player_baseinfo_query", map[string]any{})
	if err != nil {
		return nil, err
	}
	var info PlayerBaseInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("invalid base info: %v", err)}
	}
	return &info, nil
}

// ScreenInfo fetches the current viewport.
func (c *Client) ScreenInfo(ctx context.Context) (*ScreenInfo, error) {
	data, err := c.Send(ctx, "screen_info_query", map[string]any{})
	if err != nil {
		return nil, err
	}
	var info ScreenInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("invalid screen info: %v", err)}
	}
	return &info, nil
}

// FogQuery samples visibility at one cell.
func (c *Client) FogQuery(ctx context.Context, pos Location) (*FogInfo, error) {
	data, err := c.Send(ctx, "fog_query", map[string]any{"pos": pos})
	if err != nil {
		return nil, err
	}
	var fog FogInfo
	if err := json.Unmarshal(data, &fog); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("invalid fog data: %v", err)}
	}
	return &fog, nil
}

// ProductionQueueQuery returns the raw production queue payload. Only the
// economy collaborator reads it, so it stays untyped here.
func (c *Client) ProductionQueueQuery(ctx context.Context, queueType string) (json.RawMessage, error) {
	params := map[string]any{}
	if queueType != "" {
		params["queueType"] = queueType
	}
	return c.Send(ctx, "query_production_queue", params)
}

// MoveActors orders units to a location. attackMove engages enemies en route.
func (c *Client) MoveActors(ctx context.Context, ids []int, target Location, attackMove bool) error {
	if len(ids) == 0 {
		return nil
	}
	isAttackMove := 0
	if attackMove {
		isAttackMove = 1
	}
	_, err := c.Send(ctx, "move_actor", map[string]any{
		"targets":      map[string]any{"actorId": ids},
		"location":     target,
		"isAttackMove": isAttackMove,
	})
	return err
}

// Attack orders attackers against targets. IDs are plain integers on the
// wire; the parser upstream has already coerced anything larger.
func (c *Client) Attack(ctx context.Context, attackerIDs, targetIDs []int) error {
	if len(attackerIDs) == 0 || len(targetIDs) == 0 {
		return nil
	}
	_, err := c.Send(ctx, "attack", map[string]any{
		"attackers": map[string]any{"actorId": attackerIDs, "range": "all"},
		"targets":   map[string]any{"actorId": targetIDs, "range": "all"},
	})
	return err
}

// StopActors issues a Stop order through the generic command verb.
func (c *Client) StopActors(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.Send(ctx, "command", map[string]any{
		"orders": []map[string]any{{"command": "Stop", "actorIds": ids}},
	})
	return err
}

// DeployActors deploys units in place (MCV unpack and similar).
func (c *Client) DeployActors(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.Send(ctx, "deploy_units", map[string]any{
		"targets": map[string]any{"actorId": ids},
	})
	return err
}
