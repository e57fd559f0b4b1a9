// Package telemetry fans formatted position lines out to downstream
// consumers over UDP and TCP. Targets subscribe with a flag mask; TCP
// targets get a bounded queue and reconnect with backoff, dropping messages
// rather than stalling the control loop.
package telemetry

import (
	"log"
	"net"
	"sync"
	"time"
)

// Message flag bits.
const (
	FlagPosition = 0x1
	FlagEvent    = 0x2
)

type Message struct {
	Data []byte
	Flag uint32
}

type udpTarget struct {
	addr *net.UDPAddr
	flag uint32
}

type tcpClient struct {
	addr    string
	flag    uint32
	queue   chan *Message
	running bool
	wg      sync.WaitGroup
}

// Sender delivers messages to all registered targets whose mask covers the
// message flag.
type Sender struct {
	udpTargets []*udpTarget
	tcpClients []*tcpClient
	connUDP    *net.UDPConn
	header     []byte
	running    bool
}

func NewSender() *Sender {
	return &Sender{}
}

// SetHeader prefixes every outgoing message with hdr and a colon.
func (s *Sender) SetHeader(hdr string) {
	if hdr == "" {
		s.header = nil
	} else {
		s.header = []byte(hdr + ":")
	}
}

func (s *Sender) AddUDPTarget(addr string, flag uint32) error {
	uaddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	s.udpTargets = append(s.udpTargets, &udpTarget{addr: uaddr, flag: flag})
	return nil
}

func (s *Sender) AddTCPTarget(addr string, flag uint32) {
	s.tcpClients = append(s.tcpClients, &tcpClient{
		addr:  addr,
		flag:  flag,
		queue: make(chan *Message, 1000),
	})
}

func (s *Sender) Start() error {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return err
	}
	s.connUDP = conn
	s.running = true
	for _, c := range s.tcpClients {
		c.start()
	}
	return nil
}

func (s *Sender) Stop() {
	s.running = false
	if s.connUDP != nil {
		s.connUDP.Close()
	}
	for _, c := range s.tcpClients {
		c.stop()
	}
}

// Send delivers data to every target whose mask covers flag.
func (s *Sender) Send(data []byte, flag uint32) {
	if !s.running {
		return
	}

	var msgData []byte
	if len(s.header) > 0 {
		msgData = make([]byte, len(s.header)+len(data))
		copy(msgData, s.header)
		copy(msgData[len(s.header):], data)
	} else {
		msgData = data
	}

	msg := &Message{Data: msgData, Flag: flag}

	for _, t := range s.udpTargets {
		if (t.flag & flag) == flag {
			_, _ = s.connUDP.WriteToUDP(msgData, t.addr)
		}
	}

	for _, c := range s.tcpClients {
		if (c.flag & flag) == flag {
			select {
			case c.queue <- msg:
			default:
				// Drop if full.
			}
		}
	}
}

func (c *tcpClient) start() {
	c.running = true
	c.wg.Add(1)
	go c.loop()
}

func (c *tcpClient) stop() {
	c.running = false
	close(c.queue)
	c.wg.Wait()
}

func (c *tcpClient) loop() {
	defer c.wg.Done()
	var conn net.Conn
	var err error

	connect := func() bool {
		if conn != nil {
			return true
		}
		conn, err = net.DialTimeout("tcp", c.addr, 2*time.Second)
		return err == nil
	}

	for msg := range c.queue {
		if !c.running {
			break
		}
		if !connect() {
			time.Sleep(500 * time.Millisecond)
			if !connect() {
				continue // drop this message
			}
		}
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if _, err = conn.Write(msg.Data); err != nil {
			log.Printf("telemetry: TCP write to %s failed: %v", c.addr, err)
			conn.Close()
			conn = nil
			time.Sleep(100 * time.Millisecond)
		}
	}
	if conn != nil {
		conn.Close()
	}
}
