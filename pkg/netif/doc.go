// Package netif provides interface address tables for the SLAAC core.
//
// MemoryTable is a bounded in-memory table, used in tests and for dry runs.
// On Linux, Netlink manages the addresses of a real interface through
// rtnetlink and can report address removals as they happen.
package netif
