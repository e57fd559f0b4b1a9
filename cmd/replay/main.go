package main

import (
	"encoding/json"
	"flag"
	"log"

	"safectl-go/tracklog"
	"safectl-go/web"
)

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
	logPath := flag.String("log", "", "Binary step-log to replay")
	speed := flag.Float64("speed", 1.0, "Replay speed multiplier (<=0 for max speed)")
	httpPort := flag.Int("http", 8080, "HTTP/WebSocket port")
	distDir := flag.String("dist", "", "Static frontend directory (optional)")
	flag.Parse()

	if *logPath == "" {
		log.Fatal("--log required")
	}

	parser := tracklog.NewParser(*logPath)
	if err := parser.Parse(); err != nil {
		log.Fatalf("parse step log: %v", err)
	}
	log.Printf("Loaded %d records from %s", len(parser.Records), *logPath)

	webSvr := web.NewServer()
	go webSvr.Start(*httpPort, *distDir, "")

	log.Printf("Replaying at %.1fx speed...", *speed)
	parser.Replay(*speed, func(r tracklog.Record) {
		b, _ := json.Marshal(wsFrame{
			TS:     r.TimestampMs,
			TX:     r.TruthPX,
			TY:     r.TruthPY,
			EX:     r.EstPX,
			EY:     r.EstPY,
			AX:     r.AccelX,
			AY:     r.AccelY,
			H:      r.H,
			Active: r.Active(),
			Safe:   r.Safe(),
		})
		webSvr.Hub.Broadcast(b)
	})
	log.Printf("Replay complete")
}
