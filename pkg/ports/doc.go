/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the dialog interpreter from external implementations, allowing
the engine to work with various session backends, dialog sources and chat transports.

# Key Interfaces

  - SessionStore: Per-conversation key/value state (memory or Redis).
  - DialogCatalog: Resolves the immutable Dialog behind an entry point.
  - Messenger: Delivers a rendered Prompt to a chat.
  - DistributedLocker: Serialises updates of one conversation across replicas.
*/
package ports
