/*
Package arbor is a dynamic dialog engine for chat bots.

A dialog is a graph of sequences. Each sequence is an ordered run of items
(a question with buttons, a free-text prompt or an image request) and may
continue into another sequence. Options of a select item can branch into any
sequence. Dialogs are loaded once from JSON or YAML files and shared read-only;
the position of every conversation lives in a session store, so any number of
bot replicas can serve the same users.

# Concept

The engine never talks to a chat network itself. Each call returns an Outcome
that tells the host what to do next: send the rendered Prompt, redraw the
entry screen of the flow, or go back to the menu. Answers are handed to the
Handler registered for the entry point, which persists them and may reject an
answer (retry) or end the flow early (menu).

# Usage

	eng, err := arbor.New("./dialogs",
		arbor.WithHandler(domain.EntryPoll, arbor.HandlerFunc(savePollAnswer)),
	)
	if err != nil {
		log.Fatal(err)
	}

	conv := eng.Conversation("chat-42", 42, 7)
	out, err := eng.Start(ctx, conv, domain.EntryPoll)
	if err != nil {
		log.Fatal(err)
	}
	send(out.Prompt)

	// later, when the user presses a button
	out, err = eng.Runtime().HandleItemPayload(ctx, conv, callbackData)
*/
package arbor
