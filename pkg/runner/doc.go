/*
Package runner implements the interactive loop for the claire engine.

It bridges an Engine and the outside world: it reads a line, runs a turn and
writes the committed activities through a pluggable handler. Handlers are
ports.Sender implementations, so the same value can be given to the engine as
its outbound channel.

# Key Components

  - Runner: reads input, runs turns, delivers activities until EOF or "exit".
  - IOHandler: decouples how input is read and activities are shown.
  - TextHandler: line-oriented terminal IO with optional markdown rendering.
  - JSONHandler: JSON Lines IO for scripting and subprocess hosts.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithConversationID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
