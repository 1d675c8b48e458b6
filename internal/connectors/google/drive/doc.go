// Package drive implements the remote store over the Google Drive v3 API.
//
// Folder listings exclude trashed items. Google Docs and Slides are exported
// as text/plain and Sheets as text/csv. Other files are downloaded as is,
// up to Config.MaxDownloadSize.
package drive
