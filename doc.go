// Package aeskalyna объединяет блочные шифры AES (FIPS-197) и "Калина"
// (ДСТУ 7624:2014) с режимами шифрования ECB, CBC, CFB, OFB и CTR.
//
// Пример:
//
//	cfg := aeskalyna.Config{
//		Algorithm: aeskalyna.Kalyna,
//		BlockBits: 256,
//		KeyBits:   512,
//		Mode:      modes.CBC,
//	}
//	ciphertext, n, err := aeskalyna.Encrypt(cfg, plaintext, key, iv)
//	...
//	plaintext, err = aeskalyna.Decrypt(cfg, ciphertext[:n], key, iv)
//
// По умолчанию открытый текст дополняется нулями до границы блока, и
// расшифрование возвращает дополненные данные: исходную длину хранит
// вызывающий. Для обратимой набивки используйте padding.PKCS7Padding и
// другие схемы пакета padding.
package aeskalyna
