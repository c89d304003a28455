package auth_test

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coparently/coparently/internal/auth"
)

const testSecret = "unit-test-secret-key-0123456789abcdef"

func signToken(secret string, claims jwt.Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("Verifier", func() {
	var verifier *auth.Verifier

	BeforeEach(func() {
		verifier = auth.NewVerifier(testSecret)
	})

	Describe("ValidateToken", func() {
		It("accepts a token carrying a user_id claim", func() {
			tokenString := signToken(testSecret, auth.Claims{
				UserID: "parent-1",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			})

			claims, err := verifier.ValidateToken(tokenString)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("parent-1"))
		})

		It("falls back to the subject when user_id is absent", func() {
			tokenString := signToken(testSecret, jwt.RegisteredClaims{
				Subject:   "parent-2",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})

			claims, err := verifier.ValidateToken(tokenString)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("parent-2"))
		})

		It("rejects an expired token", func() {
			tokenString := signToken(testSecret, auth.Claims{
				UserID: "parent-1",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				},
			})

			_, err := verifier.ValidateToken(tokenString)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("rejects a token signed with a different secret", func() {
			tokenString := signToken("some-other-secret-key-material-here", auth.Claims{
				UserID: "parent-1",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			})

			_, err := verifier.ValidateToken(tokenString)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects a token without user_id or subject", func() {
			tokenString := signToken(testSecret, jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})

			_, err := verifier.ValidateToken(tokenString)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects garbage input", func() {
			_, err := verifier.ValidateToken("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
