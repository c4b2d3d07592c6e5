/*
Package domain contains the core domain models of the simflow questionnaire engine.

It defines the read-only form graph (Blocks, Questions, Placeholders, Options),
the navigation Target variant, the per-session FormState and the Actions that
transition it. The package is kept pure and free of I/O so that every adapter
(stores, transports, CLI) can share the same types.

# Key Entities

  - Form / Block / Question: the immutable graph loaded once per definition.
  - Placeholder: the select | input | MultiBlockManager tagged union.
  - Target: next_block | stop_flow | a literal question id.
  - BlockRef: the parameterized reference of a dynamic block instance.
  - FormState: active/completed blocks, responses, history, dynamic blocks.
  - StateDiff: what changed between two states, used for hooks and streaming.
*/
package domain
