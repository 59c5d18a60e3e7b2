package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pattarpon/pokescan/internal/domain/dex"
	"github.com/pattarpon/pokescan/internal/domain/model"
	"github.com/pattarpon/pokescan/internal/domain/normalize"
	"github.com/pattarpon/pokescan/pkg/logger"
	"github.com/pattarpon/pokescan/pkg/metrics"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

func fixtureDex() *dex.Dex {
	rate := 2
	return dex.FromData(
		[]dex.Species{
			{
				ID:           25,
				Name:         "Pikachu",
				Types:        []string{"Electric"},
				BaseStats:    map[string]int{"hp": 35, "atk": 55, "def": 40, "spa": 50, "spd": 50, "spe": 90},
				Abilities:    []string{"Static", "Lightning Rod"},
				GrowthRateID: &rate,
			},
		},
		map[int][]int{
			2: {0, 0, 8, 27, 64, 125, 216, 343, 512, 729, 1000},
		},
	)
}

func newTestClient(opts ...Option) *Client {
	return New(fixtureDex(), normalize.NewRegistry(), opts...)
}

// recordSink collects record observer callbacks for inspection.
type recordSink struct {
	mu      sync.Mutex
	records []*model.Record
}

func (s *recordSink) observe(rec *model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *recordSink) all() []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *recordSink) waitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		got := len(s.records)
		s.mu.Unlock()
		if got >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestIngestFraming(t *testing.T) {
	ctx := context.Background()
	payload := `{"species_id":25,"exp":729,"ivs":{"hp":31,"atk":31,"def":31,"spa":31,"spd":31,"spe":31}}`

	Convey("Given a client and a well-formed message", t, func() {
		Convey("When the message arrives in one chunk", func() {
			c := newTestClient()
			sink := &recordSink{}
			c.OnRecord(sink.observe)

			c.ingest(ctx, []byte(payload+"\n"))

			Convey("Then one record is published", func() {
				So(sink.all(), ShouldHaveLength, 1)
				rec := c.CurrentRecord()
				So(rec, ShouldNotBeNil)
				So(rec.SpeciesName, ShouldEqual, "Pikachu")
				So(rec.Level, ShouldNotBeNil)
				So(*rec.Level, ShouldEqual, 9)
			})
		})

		Convey("When the message is split across arbitrary chunk boundaries", func() {
			c := newTestClient()
			sink := &recordSink{}
			c.OnRecord(sink.observe)

			data := []byte(payload + "\n")
			for _, b := range data {
				c.ingest(ctx, []byte{b})
			}

			Convey("Then exactly one identical record is published", func() {
				So(sink.all(), ShouldHaveLength, 1)
				So(c.CurrentRecord().SpeciesName, ShouldEqual, "Pikachu")
			})
		})

		Convey("When one chunk carries several messages and a trailing partial", func() {
			c := newTestClient()
			sink := &recordSink{}
			c.OnRecord(sink.observe)

			chunk := payload + "\n" + payload + "\n" + `{"species_id"`
			c.ingest(ctx, []byte(chunk))

			Convey("Then only the complete messages are processed", func() {
				So(sink.all(), ShouldHaveLength, 2)
			})

			Convey("And the partial completes once its remainder arrives", func() {
				c.ingest(ctx, []byte(":25}\n"))
				So(sink.all(), ShouldHaveLength, 3)
			})
		})

		Convey("When empty lines are interleaved", func() {
			c := newTestClient()
			sink := &recordSink{}
			c.OnRecord(sink.observe)

			c.ingest(ctx, []byte("\n\n"+payload+"\n\n"))

			Convey("Then blank frames are skipped silently", func() {
				So(sink.all(), ShouldHaveLength, 1)
			})
		})
	})
}

func TestProcessLine(t *testing.T) {
	ctx := context.Background()

	Convey("Given a client with a current record", t, func() {
		c := newTestClient()
		sink := &recordSink{}
		c.OnRecord(sink.observe)
		c.ingest(ctx, []byte(`{"species_id":25}`+"\n"))
		So(c.CurrentRecord(), ShouldNotBeNil)

		Convey("When a malformed line arrives between valid lines", func() {
			c.ingest(ctx, []byte("{not json}\n"+`{"species_id":25,"level":12}`+"\n"))

			Convey("Then the malformed line is discarded and the stream continues", func() {
				records := sink.all()
				So(records, ShouldHaveLength, 2)
				So(*c.CurrentRecord().Level, ShouldEqual, 12)
			})
		})

		Convey("When the clear sentinel arrives", func() {
			c.ingest(ctx, []byte(`{"clear":true}`+"\n"))

			Convey("Then the current record is reset to nil and observers see it", func() {
				So(c.CurrentRecord(), ShouldBeNil)
				records := sink.all()
				So(records, ShouldHaveLength, 2)
				So(records[1], ShouldBeNil)
			})
		})

		Convey("When normalization fails for a payload without a resolvable species", func() {
			c.ingest(ctx, []byte(`{"name":"Glitchmon","level":5}`+"\n"))

			Convey("Then the previous record is kept", func() {
				So(c.CurrentRecord(), ShouldNotBeNil)
				So(c.CurrentRecord().SpeciesName, ShouldEqual, "Pikachu")
				So(sink.all(), ShouldHaveLength, 1)
			})
		})
	})
}

func TestClientLiveConnection(t *testing.T) {
	Convey("Given a listener feeding snapshot lines", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			fmt.Fprint(conn, `{"species_id":25,"exp":216,"shiny":true}`+"\n")
			fmt.Fprint(conn, `{"clear":true}`+"\n")
			// Hold the connection open until the client shuts down.
			buf := make([]byte, 1)
			_, _ = conn.Read(buf)
		}()

		port := ln.Addr().(*net.TCPAddr).Port
		c := newTestClient(WithHost("127.0.0.1"), WithPort(port))
		sink := &recordSink{}
		c.OnRecord(sink.observe)

		var states []ConnectionState
		var statesMu sync.Mutex
		c.OnState(func(s ConnectionState) {
			statesMu.Lock()
			states = append(states, s)
			statesMu.Unlock()
		})

		Convey("When the client connects and reads the stream", func() {
			c.Start(context.Background())
			defer c.Stop()

			So(sink.waitFor(2, 2*time.Second), ShouldBeTrue)

			Convey("Then the record and the clear are observed in order", func() {
				records := sink.all()
				So(records[0], ShouldNotBeNil)
				So(records[0].SpeciesName, ShouldEqual, "Pikachu")
				So(records[0].Shiny, ShouldBeTrue)
				So(records[1], ShouldBeNil)
			})

			Convey("And the state transitioned through Connecting to Connected", func() {
				statesMu.Lock()
				seen := make([]ConnectionState, len(states))
				copy(seen, states)
				statesMu.Unlock()
				So(len(seen), ShouldBeGreaterThanOrEqualTo, 2)
				So(seen[0], ShouldEqual, Connecting)
				So(seen[1], ShouldEqual, Connected)
				So(c.State(), ShouldEqual, Connected)
			})
		})
	})
}

// reconnectTotal reads the reconnect counter off the metrics registry.
func reconnectTotal(t *testing.T) float64 {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "pokescan_stream_reconnects_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestClientReconnect(t *testing.T) {
	Convey("Given a dialer that always fails", t, func() {
		var attempts atomic.Int32
		failing := func(ctx context.Context, network, addr string) (net.Conn, error) {
			attempts.Add(1)
			return nil, errors.New("connection refused")
		}

		Convey("When the client runs across the reconnect delay", func() {
			before := reconnectTotal(t)
			c := newTestClient(
				WithDialer(failing),
				WithReconnectDelay(20*time.Millisecond),
			)
			c.Start(context.Background())

			deadline := time.Now().Add(time.Second)
			for attempts.Load() < 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			c.Stop()

			Convey("Then it keeps retrying on the fixed delay", func() {
				So(attempts.Load(), ShouldBeGreaterThanOrEqualTo, 3)
				So(c.State(), ShouldEqual, Disconnected)
			})

			Convey("And the reconnect counter counts every dial but the first", func() {
				So(reconnectTotal(t)-before, ShouldEqual, float64(attempts.Load()-1))
			})
		})

		Convey("When Stop is called during the reconnect delay", func() {
			before := reconnectTotal(t)
			c := newTestClient(
				WithDialer(failing),
				WithReconnectDelay(time.Hour),
			)
			c.Start(context.Background())

			deadline := time.Now().Add(time.Second)
			for attempts.Load() < 1 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			dials := attempts.Load()
			c.Stop()
			time.Sleep(50 * time.Millisecond)

			Convey("Then the pending retry is aborted and no further dials happen", func() {
				So(attempts.Load(), ShouldEqual, dials)
				So(c.State(), ShouldEqual, Disconnected)
				So(reconnectTotal(t)-before, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a server that drops the first connection", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		defer ln.Close()

		go func() {
			// First connection: send one record, then hang up.
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			fmt.Fprint(conn, `{"species_id":25,"level":7}`+"\n")
			conn.Close()

			// Second connection: send another record and hold open.
			conn, err = ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			fmt.Fprint(conn, `{"species_id":25,"level":8}`+"\n")
			buf := make([]byte, 1)
			_, _ = conn.Read(buf)
		}()

		port := ln.Addr().(*net.TCPAddr).Port
		c := newTestClient(
			WithHost("127.0.0.1"),
			WithPort(port),
			WithReconnectDelay(20*time.Millisecond),
		)
		sink := &recordSink{}
		c.OnRecord(sink.observe)

		Convey("When the stream ends and the client reconnects", func() {
			c.Start(context.Background())
			defer c.Stop()

			So(sink.waitFor(2, 2*time.Second), ShouldBeTrue)

			Convey("Then records from both connections are observed", func() {
				records := sink.all()
				So(*records[0].Level, ShouldEqual, 7)
				So(*records[1].Level, ShouldEqual, 8)
			})
		})
	})
}

func TestPortFileOverride(t *testing.T) {
	Convey("Given a discovery file holding a port", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "port.txt")
		So(os.WriteFile(path, []byte(" 4455 \n"), 0o600), ShouldBeNil)

		Convey("When the client is constructed with the file", func() {
			c := newTestClient(WithPort(9999), WithPortFile(path))

			Convey("Then the file value overrides the configured port", func() {
				So(c.Addr(), ShouldEqual, "127.0.0.1:4455")
			})
		})

		Convey("When the file holds garbage", func() {
			So(os.WriteFile(path, []byte("not-a-port"), 0o600), ShouldBeNil)
			c := newTestClient(WithPort(9999), WithPortFile(path))

			Convey("Then the configured port is kept", func() {
				So(c.Addr(), ShouldEqual, "127.0.0.1:9999")
			})
		})

		Convey("When the file is missing", func() {
			c := newTestClient(WithPort(9999), WithPortFile(filepath.Join(dir, "absent")))

			Convey("Then the configured port is kept", func() {
				So(c.Addr(), ShouldEqual, "127.0.0.1:9999")
			})
		})
	})
}
