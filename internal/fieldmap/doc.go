// Package fieldmap substitutes ADIF record values into $VAR_<FIELD>
// placeholders of a card template.
//
// Time and date fields are reformatted for display; every other value is
// inserted verbatim. Placeholders with no matching field are stripped so a
// rendered card never shows a raw token.
package fieldmap
