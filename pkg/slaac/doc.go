// Package slaac implements stateless address autoconfiguration for a node in
// a constrained IPv6 mesh network.
//
// A Manager keeps the node's global addresses in step with the on-mesh
// prefixes the network currently advertises. For every SLAAC-eligible prefix
// that no address on the interface already covers, it takes a slot from a
// fixed-capacity pool, derives a stable interface identifier (RFC 7217 style)
// and adds the address to the interface. Addresses whose prefix disappears,
// loses its SLAAC flag, or becomes filtered are removed again.
//
// # Creating a Manager
//
//	m, err := slaac.New(slaac.Config{
//	    Prefixes:  provider,   // advertised on-mesh prefixes
//	    Interface: table,      // the interface address table
//	    Settings:  storage.NewFileStorage("/var/lib/slaac/settings.toml"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Prefix set known: run the first full pass.
//	m.HandleTopologyChanged()
//
// # Events
//
// The owner forwards two classes of events. A topology change runs a full
// add and remove pass. Removal of any address from the interface runs an add
// pass only, so that a prefix vacated by a removed address is filled again.
//
// # Interface identifiers
//
// IIDs are the first 8 bytes of
//
//	SHA-256(prefix bytes || interface tag || counter (uint16, big endian) || secret key)
//
// retried with counter 0, 1 and 2 while the result is a reserved IID. If all
// attempts are reserved a random IID is used instead; the address is still
// created but will change across restarts.
//
// The secret key is created lazily on first use, persisted through the
// settings store, and reused on every later run.
//
// # Concurrency
//
// A Manager is not safe for concurrent use and not reentrant: callers must
// serialize Enable, Disable, SetFilter, Update and the event handlers, and
// an Interface implementation must not call back into the Manager.
package slaac
