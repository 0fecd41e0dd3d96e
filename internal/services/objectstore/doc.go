// Package objectstore archives rendered cards in Amazon S3 or any
// S3-compatible endpoint.
package objectstore
