/*
Package claire is a resumable multi-turn dialog engine.

A conversation is a stack of dialog frames persisted after every turn. Each
inbound message loads the stack, resumes the active frame (a waterfall step or
a text prompt), and commits the new stack before any outbound activity is
handed to the host. The process can stop between any two turns and a new
Engine over the same store continues exactly where the previous one left off.

# Key Features

  - Waterfall dialogs: ordered steps that advance, prompt, begin a child or end.
  - Text prompts validated by named, registered pure functions.
  - Pluggable durable stores: memory, file, redis, sqlite and mongo.
  - Per-conversation single flight through the session manager.
  - Intent routing and next-dialogue chaining from a YAML table.

# Usage

With no dialogs configured the engine runs the built-in enquiry flow, which
asks for a name and a topic:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/hackeddesign/claire"
		"github.com/hackeddesign/claire/pkg/adapters/memory"
	)

	func main() {
		eng, err := claire.New(claire.WithStore(memory.NewStore()))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		for _, text := range []string{"hi", "Alice", "Billing"} {
			text := text
			res, err := eng.Turn(ctx, "conversation-1", &text)
			if err != nil {
				log.Fatal(err)
			}
			for _, a := range res.Activities {
				fmt.Println(a.Text)
			}
		}
	}
*/
package claire
