package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/wallet/domain"
	pkgdb "github.com/opencampus/paygate/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAccount(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.WalletAccount, error) {
	var account domain.WalletAccount
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, balance, updated_at FROM wallet_accounts WHERE user_id = ?`,
		userID,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.UserID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) DebitBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, amount int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE wallet_accounts
		 SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND balance >= ?`,
		amount,
		userID,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) CreditBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, amount int64) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE wallet_accounts
		 SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		amount,
		userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO wallet_accounts (user_id, balance, updated_at)
			 VALUES (?, ?, CURRENT_TIMESTAMP)`,
			userID,
			amount,
		).Error
		if err != nil && pkgdb.IsDuplicateKeyErr(err) {
			// Lost the race creating the account; apply the update instead.
			return db.WithContext(ctx).Exec(
				`UPDATE wallet_accounts
				 SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP
				 WHERE user_id = ?`,
				amount,
				userID,
			).Error
		}
		return err
	}
	return nil
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *domain.WalletTransaction) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO wallet_transactions (id, user_id, direction, amount, source_type, source_id, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source_type, source_id) DO NOTHING`,
		txn.ID,
		txn.UserID,
		string(txn.Direction),
		txn.Amount,
		string(txn.SourceType),
		txn.SourceID,
		txn.Reason,
		txn.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
