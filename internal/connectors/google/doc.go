// Package google provides shared infrastructure for the Google Drive connector.
//
//   - Credentials holds the OAuth client and per-user tokens
//   - NewDriveService builds an authenticated API client
//   - WrapError maps Google API errors onto domain sentinels
//   - RateLimiter keeps each user below Drive's request quota
//
// # Credentials file
//
//	{
//	  "client_id": "...apps.googleusercontent.com",
//	  "client_secret": "...",
//	  "users": {
//	    "alice": {"access_token": "...", "refresh_token": "...", "expiry": "..."}
//	  }
//	}
package google
