// Package vector provides the cosine similarity and BLOB encoding helpers
// shared by the vector index implementations.
package vector
