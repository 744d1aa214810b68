// Package kakao formats assembly schedules as Kakao i Open Builder skill responses.
package kakao
