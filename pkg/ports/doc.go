/*
Package ports defines the driven ports (interfaces) for the claire engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, channels, and lock providers.

# Key Interfaces

  - StateStore: Responsible for persisting and loading conversation State.
  - DistributedLocker: Provides distributed locking so turns for one conversation never overlap across replicas.
  - Sender: The outbound side of the channel boundary.
*/
package ports
