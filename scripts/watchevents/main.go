package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"codeberg.org/tubetrack/server/internal/events"
	"github.com/gorilla/websocket"
)

// prints the run events an account receives until interrupted
func main() {
	host := flag.String("host", "localhost:8080", "server host")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("usage: watchevents [-host localhost:8080] <token>")
		os.Exit(1)
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/v1/ws"}
	q := u.Query()
	q.Set("token", flag.Arg(0))
	u.RawQuery = q.Encode()

	fmt.Printf("connecting to %s%s\n", u.Host, u.Path)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close() //nolint:errcheck

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			var event events.Event
			if err := c.ReadJSON(&event); err != nil {
				log.Println("read:", err)
				return
			}

			fmt.Printf("[%s] #%d %s %s\n", event.Timestamp.Format(time.TimeOnly), event.Sequence, event.Type, string(event.Payload))
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.WriteMessage(websocket.CloseMessage, msg); err != nil {
			log.Println("close:", err)
		}

		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
