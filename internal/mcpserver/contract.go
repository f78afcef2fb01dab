package mcpserver

// BlockFormatContract describes the JSON shape of note blocks that LLM
// consumers should follow when reading or writing notes.
const BlockFormatContract = `# Folio Block Format Contract

A note is a JSON object with an ordered ` + "`nodes`" + ` array. Every node is a block
with a string ` + "`id`" + ` (unique within the note) and a ` + "`type`" + ` discriminator.

## Note

` + "```" + `json
{
  "id": "uuid",
  "title": "Untitled Note",
  "nodes": [ ...blocks ],
  "createdAt": 1700000000000,
  "updatedAt": 1700000000000,
  "folderId": "default-folder",
  "tags": ["work"]
}
` + "```" + `

Timestamps are milliseconds since the Unix epoch. ` + "`folderId`" + ` must name an
existing folder; ` + "`default-folder`" + ` is the root folder and cannot be deleted.

## Block types

| type             | fields                                                        |
|------------------|---------------------------------------------------------------|
| text             | ` + "`content`" + `: HTML markup                                          |
| checklist        | ` + "`items`" + `: [{"id", "text", "checked"}]                             |
| table            | ` + "`rows`" + `, ` + "`cols`" + `, ` + "`data`" + `: rows × cols array of strings               |
| ordered-list     | ` + "`items`" + `: [string]                                                |
| unordered-list   | ` + "`items`" + `: [string]                                                |
| file             | ` + "`fileName`" + `, ` + "`fileData`" + ` (data URL), ` + "`fileType`" + ` (MIME)          |
| image            | ` + "`imageData`" + ` (data URL), ` + "`alt`" + `                                  |
| audio            | ` + "`audioData`" + ` (data URL), optional ` + "`duration`" + ` in seconds          |
| canvas           | ` + "`canvasData`" + ` (PNG data URL)                                   |

## Rules

1. **Types are closed.** Unknown ` + "`type`" + ` values are rejected.
2. **Tables are rectangular.** ` + "`data`" + ` has exactly ` + "`rows`" + ` rows of ` + "`cols`" + ` cells each,
   with at least one row and one column.
3. **Payloads are data URLs** (` + "`data:<mime>;base64,<payload>`" + `). Use the
   ` + "`attach_asset`" + ` tool instead of building them by hand.
4. **Tags** are trimmed, non-empty and unique within a note.
5. **Text** is HTML. Search and snippets use its plain text.
6. **Edit in place** with the ` + "`edit_block`" + ` tool: tables take ` + "`add-row`" + `,
   ` + "`add-column`" + `, ` + "`remove-row`" + `, ` + "`remove-column`" + ` and ` + "`set-cell`" + `; checklists and
   lists take ` + "`add-item`" + `, ` + "`set-item`" + `, ` + "`remove-item`" + ` and ` + "`move-item`" + `, checklists also
   ` + "`toggle-item`" + `. Block ids within a note are unique.

## Example

` + "```" + `json
{"id": "b1", "type": "checklist", "items": [
  {"id": "i1", "text": "Book flights", "checked": true},
  {"id": "i2", "text": "Renew passport", "checked": false}
]}
` + "```" + `
`
