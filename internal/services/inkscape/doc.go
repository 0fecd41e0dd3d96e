// Package inkscape wraps the external vector-to-raster converter used to turn
// rendered SVG cards into images.
//
// The binary and its argument list come from configuration; the {input} and
// {output} tokens in each argument are replaced with the card paths. Command
// execution goes through an Executor so tests can stub the process.
package inkscape
