// Package events publishes mirror lifecycle events to Kafka.
//
// Every applied mutation of a pass (mirror created, mirror deleted, source
// marked) becomes one JSON message. Delivery is best effort: the engine logs
// a failed publish and carries on.
package events
