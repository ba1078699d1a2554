/*
Package domain contains the core domain models of the claire dialog engine.

It defines the persisted shape of a conversation (slots plus the dialog stack),
the outbound activities a turn produces, and the error taxonomy shared by the
engine and its adapters. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - State: the durable per-conversation record (Slots, Stack, Status).
  - Frame: one active dialog instance on the stack (DialogID, Cursor, Options).
  - Stack: ordered frames, the last one is active. Empty means idle.
  - Activity: a structural representation of what the host should send.
*/
package domain
