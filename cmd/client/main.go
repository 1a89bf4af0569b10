/*
Package main is the interactive Roomcast chat client.

It connects to the chat server over TCP, drives a numbered operator menu on
stdin, serializes requests to the wire format, and prints every inbound frame
(fan-out envelopes and status lines alike) as it arrives.
*/
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"roomcast/internal/app/chat"
)

// datetimeLayout matches the wire pattern "yyyy-MM-dd HH:mm:ss" (local time).
const datetimeLayout = "2006-01-02 15:04:05"

// session tracks what the operator has asserted so far. The server allows a
// user in several rooms at once; the client tracks only the most recent one.
type session struct {
	userID string
	roomID string
}

func main() {
	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "localhost:8080"
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", addr)

	// Print every inbound frame as it arrives.
	go func() {
		scanner := chat.NewFrameScanner(conn)
		for scanner.Scan() {
			fmt.Printf("<< %s\n", scanner.Text())
		}
		fmt.Println("Connection closed by server.")
		os.Exit(0)
	}()

	stdin := bufio.NewScanner(os.Stdin)
	sess := &session{}

	for {
		printMenu()

		if !stdin.Scan() {
			return
		}
		choice := strings.TrimSpace(stdin.Text())

		switch choice {
		case "1":
			login(conn, stdin, sess)
		case "2":
			createRoom(conn, stdin, sess)
		case "3":
			joinRoom(conn, stdin, sess)
		case "4":
			leaveRoom(conn, sess)
		case "5":
			sendMessage(conn, stdin, sess)
		case "6":
			logout(conn, sess)
		case "0":
			return
		default:
			fmt.Println("Invalid option.")
		}

		// Give the server's reply a moment to land before re-printing the menu.
		time.Sleep(200 * time.Millisecond)
	}
}

func printMenu() {
	fmt.Println("Select an operation:")
	fmt.Println("1. Login (LOGIN)")
	fmt.Println("2. Create room (CREATE_ROOM)")
	fmt.Println("3. Join room (JOIN_ROOM)")
	fmt.Println("4. Leave room (LEAVE_ROOM)")
	fmt.Println("5. Send message (SEND_MESSAGE)")
	fmt.Println("6. Logout (LOGOUT)")
	fmt.Println("0. Exit")
	fmt.Print("Enter option number: ")
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

func writeEnvelope(conn net.Conn, msg *chat.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to serialize message: %v\n", err)
		return
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send message: %v\n", err)
	}
}

func login(conn net.Conn, stdin *bufio.Scanner, sess *session) {
	if sess.userID != "" {
		fmt.Println("You are already logged in.")
		return
	}

	userID := prompt(stdin, "Enter user id: ")
	if userID == "" {
		fmt.Println("User id must not be empty.")
		return
	}

	writeEnvelope(conn, &chat.Message{
		Type:     chat.TypeLogin,
		UserID:   userID,
		Datetime: time.Now().Format(datetimeLayout),
	})

	sess.userID = userID
}

func createRoom(conn net.Conn, stdin *bufio.Scanner, sess *session) {
	if sess.userID == "" {
		fmt.Println("You are not logged in.")
		return
	}

	roomID := prompt(stdin, "Enter room id: ")
	if roomID == "" {
		fmt.Println("Room id must not be empty.")
		return
	}

	writeEnvelope(conn, &chat.Message{
		Type:     chat.TypeCreateRoom,
		UserID:   sess.userID,
		RoomID:   roomID,
		Datetime: time.Now().Format(datetimeLayout),
	})

	sess.roomID = roomID
}

func joinRoom(conn net.Conn, stdin *bufio.Scanner, sess *session) {
	if sess.userID == "" {
		fmt.Println("You are not logged in.")
		return
	}

	roomID := prompt(stdin, "Enter room id: ")
	if roomID == "" {
		fmt.Println("Room id must not be empty.")
		return
	}

	writeEnvelope(conn, &chat.Message{
		Type:     chat.TypeJoinRoom,
		UserID:   sess.userID,
		RoomID:   roomID,
		Datetime: time.Now().Format(datetimeLayout),
	})

	sess.roomID = roomID
}

func leaveRoom(conn net.Conn, sess *session) {
	if sess.userID == "" || sess.roomID == "" {
		fmt.Println("You are not in a room.")
		return
	}

	writeEnvelope(conn, &chat.Message{
		Type:     chat.TypeLeaveRoom,
		UserID:   sess.userID,
		RoomID:   sess.roomID,
		Datetime: time.Now().Format(datetimeLayout),
	})

	sess.roomID = ""
}

func sendMessage(conn net.Conn, stdin *bufio.Scanner, sess *session) {
	if sess.userID == "" {
		fmt.Println("You are not logged in.")
		return
	}
	if sess.roomID == "" {
		fmt.Println("You are not in a room. Create or join one first.")
		return
	}

	content := prompt(stdin, "Enter message content: ")

	writeEnvelope(conn, &chat.Message{
		Type:     chat.TypeSendMessage,
		UserID:   sess.userID,
		RoomID:   sess.roomID,
		Content:  content,
		Datetime: time.Now().Format(datetimeLayout),
	})
}

func logout(conn net.Conn, sess *session) {
	if sess.userID == "" {
		fmt.Println("You are not logged in.")
		return
	}

	writeEnvelope(conn, &chat.Message{
		Type:     chat.TypeLogout,
		UserID:   sess.userID,
		RoomID:   sess.roomID,
		Datetime: time.Now().Format(datetimeLayout),
	})

	sess.userID = ""
	sess.roomID = ""
}
