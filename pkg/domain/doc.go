/*
Package domain contains the core data model of the Arbor dialog engine.

It describes the JSON-declared dialogs the engine walks and the small value types the
engine exchanges with its host. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Dialog: An immutable flow made of Sequences, Items and Options.
  - Position: The engine cursor (sequence id, item index) inside one Dialog.
  - EntryPoint: The closed set of top-level flows a conversation can start from.
  - Prompt: A structural representation of what the host should render.
  - AnswerEvent / Signal: The contract between the engine and per-flow handlers.
*/
package domain
