package util

// Providers compute "today" in Europe/Paris; embed the zone database so minimal
// container images without /usr/share/zoneinfo still resolve it.
import _ "time/tzdata"
