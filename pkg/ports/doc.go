/*
Package ports defines the driven ports (interfaces) of wca.

# Key Interfaces

  - MachineStore: persists serialized machines by name.
  - StreamPort: the frame in, instruction out contract served by transports.

Adapters live under pkg/adapters and internal/adapters. Every MachineStore
implementation is expected to pass RunMachineStoreContract.
*/
package ports
