// Package orgs implements the entitlement adapters the authorization
// coordinator consults: the building ampel (traffic light) probe and the
// per-membership-service org adapters (VIS, AMIV, VMP). Each adapter talks
// to its service's existing HTTP API; none of them share a protocol, so
// each gets its own small client rather than a generic abstraction.
package orgs
