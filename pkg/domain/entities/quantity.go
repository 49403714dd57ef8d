package entities

// Quantity represents an integer quantity value for discrete garment units
type Quantity int64

// Capacity is a production line's ceiling in units per calendar day
type Capacity int64
