package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"safectl-go/sim"
	"safectl-go/telemetry"
	"safectl-go/tracklog"
	"safectl-go/web"
)

// wsFrame is one live run frame pushed to browser clients.
type wsFrame struct {
	TS     int64   `json:"ts"`
	TX     float64 `json:"tx"`
	TY     float64 `json:"ty"`
	EX     float64 `json:"ex"`
	EY     float64 `json:"ey"`
	AX     float64 `json:"ax"`
	AY     float64 `json:"ay"`
	H      float64 `json:"h"`
	Active bool    `json:"active"`
	Safe   bool    `json:"safe"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario XML (defaults to the built-in corridor run)")
	httpPort := flag.Int("http", 8080, "HTTP/WebSocket port. 0 to disable.")
	distDir := flag.String("dist", "", "Static frontend directory (optional)")
	targets := flag.String("telemetry", "", "Comma-separated telemetry targets, e.g. udp:127.0.0.1:9000,tcp:10.0.0.5:9001")
	logPath := flag.String("log", "", "Optional binary step-log output")
	loop := flag.Bool("loop", false, "Restart the scenario when it finishes")
	flag.Parse()

	sc := sim.DefaultScenario()
	if *scenarioPath != "" {
		var err error
		sc, err = sim.ParseScenario(*scenarioPath)
		if err != nil {
			log.Fatalf("load scenario: %v", err)
		}
	}

	var hub *web.Hub
	if *httpPort > 0 {
		webSvr := web.NewServer()
		go webSvr.Start(*httpPort, *distDir, *scenarioPath)
		hub = webSvr.Hub
	}

	var sender *telemetry.Sender
	if *targets != "" {
		sender = telemetry.NewSender()
		for _, t := range strings.Split(*targets, ",") {
			parts := strings.SplitN(strings.TrimSpace(t), ":", 2)
			if len(parts) != 2 {
				log.Fatalf("bad telemetry target %q", t)
			}
			switch parts[0] {
			case "udp":
				if err := sender.AddUDPTarget(parts[1], telemetry.FlagPosition); err != nil {
					log.Fatalf("telemetry target %q: %v", t, err)
				}
				log.Printf("Added UDP telemetry target %s", parts[1])
			case "tcp":
				sender.AddTCPTarget(parts[1], telemetry.FlagPosition)
				log.Printf("Added TCP telemetry target %s", parts[1])
			default:
				log.Fatalf("bad telemetry target %q", t)
			}
		}
		if err := sender.Start(); err != nil {
			log.Fatalf("start telemetry: %v", err)
		}
		defer sender.Stop()
	}

	var lw *tracklog.Writer
	if *logPath != "" {
		var err error
		lw, err = tracklog.NewWriter(*logPath)
		if err != nil {
			log.Fatalf("create step log: %v", err)
		}
		defer lw.Close()
		log.Printf("Logging steps to %s", *logPath)
	}

	stop := make(chan struct{})
	go runLoop(sc, hub, sender, lw, *loop, stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")
	close(stop)
}

func runLoop(sc sim.Scenario, hub *web.Hub, sender *telemetry.Sender, lw *tracklog.Writer, repeat bool, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(sc.Dt * float64(time.Second)))
	defer ticker.Stop()

	l := sim.NewLoop(sc)
	var seq uint16
	start := time.Now().UnixMilli()
	log.Printf("Scenario %q running at %.0f Hz", sc.Name, 1.0/sc.Dt)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if l.Done() {
			if !repeat {
				log.Printf("Scenario %q finished", sc.Name)
				return
			}
			l = sim.NewLoop(sc)
			start = time.Now().UnixMilli()
		}

		r := l.Step()
		ts := start + r.TimestampMs
		seq++

		if hub != nil {
			b, _ := json.Marshal(wsFrame{
				TS:     ts,
				TX:     r.Truth.P.X,
				TY:     r.Truth.P.Y,
				EX:     r.EstP.X,
				EY:     r.EstP.Y,
				AX:     r.Accel.X,
				AY:     r.Accel.Y,
				H:      r.H,
				Active: r.Active,
				Safe:   r.Safe,
			})
			hub.Broadcast(b)
		}

		if sender != nil {
			msg := telemetry.FormatAgentPos(1, ts, seq, r.EstP.X, r.EstP.Y, r.H, r.Active)
			sender.Send(msg, telemetry.FlagPosition)
		}

		if lw != nil {
			var flags uint16
			if r.Active {
				flags |= tracklog.FlagActive
			}
			if !r.Safe {
				flags |= tracklog.FlagUnsafe
			}
			_ = lw.WriteRecord(tracklog.Record{
				TimestampMs: ts,
				TruthPX:     r.Truth.P.X,
				TruthPY:     r.Truth.P.Y,
				TruthVX:     r.Truth.V.X,
				TruthVY:     r.Truth.V.Y,
				EstPX:       r.EstP.X,
				EstPY:       r.EstP.Y,
				EstVX:       r.EstV.X,
				EstVY:       r.EstV.Y,
				AccelX:      r.Accel.X,
				AccelY:      r.Accel.Y,
				H:           r.H,
				DH:          r.DH,
				Flags:       flags,
			})
		}

		if !r.Safe {
			log.Printf("WARNING: audit violation at t=%dms h=%.2f", r.TimestampMs, r.H)
		}
	}
}
